package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// AuditReport is the archived outcome of one correlation run.
type AuditReport struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Domain    string             `bson:"domain" json:"domain"`
	Path      string             `bson:"path,omitempty" json:"path,omitempty"`
	Issues    []Issue            `bson:"issues" json:"issues"`
	Alerts    []Alert            `bson:"alerts,omitempty" json:"alerts,omitempty"`
	Markdown  string             `bson:"markdown" json:"markdown"`
	HTML      string             `bson:"html" json:"html"`
	Failed    bool               `bson:"failed" json:"failed"`
	TaskID    string             `bson:"task_id,omitempty" json:"task_id,omitempty"`
	CreatedAt primitive.DateTime `bson:"created_at" json:"created_at"`
}
