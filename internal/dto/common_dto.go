package dto

// PageQuery is bound from the skip/take/search query string shared by every
// paginated listing.
type PageQuery struct {
	Skip   int    `form:"skip"   validate:"min=0"`
	Take   int    `form:"take"   validate:"min=0,max=500"`
	Search string `form:"search"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
