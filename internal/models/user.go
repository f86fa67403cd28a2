package models

// User is the reference value object for the externally-owned identity
// record. Only the fields this service needs are carried.
type User struct {
	ID       int    `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	FullName string `db:"full_name" json:"full_name"`
	IsPro    bool   `db:"is_pro" json:"is_pro"`
}
