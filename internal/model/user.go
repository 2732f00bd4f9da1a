package model

// User はローカルに保存されるユーザーを表す。
// 認証情報そのものはIdP（Firebase）が保持する。
type User struct {
	Email     string `json:"email" db:"email"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Active    bool   `json:"active" db:"active"`
	Admin     bool   `json:"admin" db:"admin"`
}

// Identity は検証済みトークンから得たリクエスト実行者の情報。
// 認可ミドルウェアがコンテキストに格納し、ハンドラーは読み取りのみ行う。
type Identity struct {
	Email     string
	FirstName string
	LastName  string
	Admin     bool
}
