package schema

import "github.com/WessleyAI/mediacrawl/engine/domain"

// keysCommon holds the raw keys shared by most sources; per-source tables
// override entries where the backend's export differs.
var keysCommon = map[Field]string{
	FieldContentTitle:   "title",
	FieldContentDesc:    "desc",
	FieldLikeCount:      "liked_count",
	FieldCommentCount:   "comment_count",
	FieldShareCount:     "share_count",
	FieldCollectCount:   "collected_count",
	FieldUserID:         "user_id",
	FieldUserName:       "nickname",
	FieldUserAvatar:     "avatar",
	FieldCommentID:      "comment_id",
	FieldCommentContent: "content",
	FieldCreatorID:      "user_id",
	FieldCreatorName:    "nickname",
	FieldCreatorFans:    "fans",
}

var builtin = []Schema{
	newSchema(domain.SourceXiaohongshu, "小红书", "Xiaohongshu", "xhs", map[Field]string{
		FieldContentID:  "note_id",
		FieldContentURL: "note_url",
	}),
	newSchema(domain.SourceDouyin, "抖音", "Douyin", "douyin", map[Field]string{
		FieldContentID:  "aweme_id",
		FieldContentURL: "aweme_url",
	}),
	newSchema(domain.SourceKuaishou, "快手", "Kuaishou", "kuaishou", map[Field]string{
		FieldContentID:  "video_id",
		FieldContentURL: "video_url",
	}),
	newSchema(domain.SourceBilibili, "B站", "Bilibili", "bilibili", map[Field]string{
		FieldContentID:    "video_id",
		FieldContentURL:   "video_url",
		FieldCommentCount: "video_comment",
		FieldShareCount:   "video_share_count",
		FieldCollectCount: "video_favorite_count",
		FieldCreatorFans:  "total_fans",
	}),
	// Weibo posts have no separate title and no favourites counter.
	newSchema(domain.SourceWeibo, "微博", "Weibo", "weibo", map[Field]string{
		FieldContentID:    "note_id",
		FieldContentURL:   "note_url",
		FieldContentTitle: "content",
		FieldContentDesc:  "content",
		FieldCommentCount: "comments_count",
		FieldShareCount:   "shared_count",
		FieldCollectCount: "liked_count",
	}),
	newSchema(domain.SourceTieba, "贴吧", "Tieba", "tieba", map[Field]string{
		FieldContentID:    "post_id",
		FieldContentURL:   "post_url",
		FieldContentDesc:  "content",
		FieldLikeCount:    "like_count",
		FieldCollectCount: "collect_count",
		FieldUserName:     "username",
		FieldCreatorName:  "username",
	}),
	newSchema(domain.SourceZhihu, "知乎", "Zhihu", "zhihu", map[Field]string{
		FieldContentID:    "content_id",
		FieldContentURL:   "content_url",
		FieldContentDesc:  "content",
		FieldLikeCount:    "voteup_count",
		FieldCollectCount: "collect_count",
		FieldUserName:     "username",
		FieldCreatorName:  "username",
		FieldCreatorFans:  "follower_count",
	}),
}

func newSchema(src domain.Source, name, display, dataDir string, overrides map[Field]string) Schema {
	keys := make(map[Field]string, len(keysCommon)+len(overrides))
	for f, k := range keysCommon {
		keys[f] = k
	}
	for f, k := range overrides {
		keys[f] = k
	}
	return Schema{Source: src, Name: name, DisplayName: display, DataDir: dataDir, keys: keys}
}
