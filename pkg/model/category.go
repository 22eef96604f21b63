package model

type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

func (c Category) IsRoot() bool {
	return c.ParentID == nil
}

type CategoryBan struct {
	MemberID     int64  `json:"member_id"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	IsDeleted    bool   `json:"is_deleted"`
}
