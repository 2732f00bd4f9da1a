package model

// Product は商品カタログの1商品を表す。
// JSONのフィールド名は既存クライアントとの互換のため変更しない。
type Product struct {
	ASIN       string   `json:"asin" db:"asin"`
	Title      *string  `json:"title" db:"title"`
	ImgURL     *string  `json:"imgUrl" db:"img_url"`
	ProductURL *string  `json:"productURL" db:"product_url"`
	Stars      *float64 `json:"stars" db:"stars"`
	Price      *float64 `json:"price" db:"price"`
	CategoryID int      `json:"category_id" db:"category_id"`
}

// Category は商品カテゴリを表す。
type Category struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"category_name" db:"category_name"`
}

// CategoryCount はカテゴリごとの商品数の集計結果。
type CategoryCount struct {
	CategoryID    int    `json:"category_id" db:"category_id"`
	CategoryName  string `json:"category_name" db:"category_name"`
	TotalProducts int    `json:"total_products" db:"total_products"`
}
