package enums

type PostVisibility string

const (
	PostVisibilityPublic  PostVisibility = "public"
	PostVisibilityFriends PostVisibility = "friends"
	PostVisibilityPrivate PostVisibility = "private"
)

func (v PostVisibility) Valid() bool {
	switch v {
	case PostVisibilityPublic, PostVisibilityFriends, PostVisibilityPrivate:
		return true
	default:
		return false
	}
}
