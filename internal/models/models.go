package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// RepoTopicMapping links one GitHub repository to the forum topic that
// receives its push notifications. RepoFullName is unique across the
// collection.
type RepoTopicMapping struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"-"`
	RepoFullName string        `bson:"repo_full_name" json:"repo_full_name"`
	TopicID      int64         `bson:"topic_id" json:"topic_id"`
}
