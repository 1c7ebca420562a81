package domain

// Category is a catalog facet: a category name and how many products carry it.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
