// Package schema maps platform-independent semantic fields onto the raw keys
// each source writes into its result files, and reads normalized values out of
// records through that mapping.
package schema

// Field is a semantic, platform-independent record field.
type Field string

const (
	FieldContentID      Field = "content_id"
	FieldContentURL     Field = "content_url"
	FieldContentTitle   Field = "content_title"
	FieldContentDesc    Field = "content_desc"
	FieldLikeCount      Field = "like_count"
	FieldCommentCount   Field = "comment_count"
	FieldShareCount     Field = "share_count"
	FieldCollectCount   Field = "collect_count"
	FieldUserID         Field = "user_id"
	FieldUserName       Field = "user_name"
	FieldUserAvatar     Field = "user_avatar"
	FieldCommentID      Field = "comment_id"
	FieldCommentContent Field = "comment_content"
	FieldCreatorID      Field = "creator_id"
	FieldCreatorName    Field = "creator_name"
	FieldCreatorFans    Field = "creator_fans"
)

// Fields lists every semantic field.
var Fields = []Field{
	FieldContentID, FieldContentURL, FieldContentTitle, FieldContentDesc,
	FieldLikeCount, FieldCommentCount, FieldShareCount, FieldCollectCount,
	FieldUserID, FieldUserName, FieldUserAvatar,
	FieldCommentID, FieldCommentContent,
	FieldCreatorID, FieldCreatorName, FieldCreatorFans,
}

// IsCount reports whether values of f are coerced to integers.
func (f Field) IsCount() bool {
	switch f {
	case FieldLikeCount, FieldCommentCount, FieldShareCount, FieldCollectCount, FieldCreatorFans:
		return true
	}
	return false
}
