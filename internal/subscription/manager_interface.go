package subscription

import "github.com/VitaminP8/devshare/internal/comment"

type Manager interface {
	Subscribe(postID string) (<-chan comment.Event, func())
	Publish(event comment.Event)
}
