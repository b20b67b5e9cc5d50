package comment

type EventKind string

const (
	EventAdded   EventKind = "added"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
	EventLiked   EventKind = "liked"
)

// Event - уведомление об изменении комментария в посте
type Event struct {
	Kind    EventKind `json:"kind"`
	PostID  string    `json:"postId"`
	Comment *Comment  `json:"comment"`
}
