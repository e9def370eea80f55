package transport

type CreateItemRequest struct {
	Title       string
	Description string
	Price       int64
	Image       string
	LargeImage  string
}

// PatchItemRequest leaves nil fields untouched.
type PatchItemRequest struct {
	Title       *string
	Description *string
	Price       *int64
	Image       *string
	LargeImage  *string
}

type ItemFilter struct {
	TitleContains       string
	DescriptionContains string
	OrderBy             string
	Skip                int
	First               int
}

type SearchResult struct {
	Total int64
	IDs   []string
}
