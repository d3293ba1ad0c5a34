package model

// Location is a clinic or office a provider can be assigned to.
type Location struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt Timestamp `db:"created_at" json:"-"`
}

type CreateLocationRequest struct {
	Name string `json:"name" binding:"required,notblank"`
}

type CreateLocationResponse struct {
	Message  string    `json:"message"`
	Location *Location `json:"location"`
}
