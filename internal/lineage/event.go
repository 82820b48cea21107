// Package lineage emits OpenLineage-style run events describing which
// datasets each pipeline stage read and wrote.
package lineage

import (
	"time"

	"github.com/BartekS5/salesflow/pkg/models"
)

type EventType string

const (
	EventStart    EventType = "START"
	EventComplete EventType = "COMPLETE"
	EventFail     EventType = "FAIL"
)

const (
	Producer  = "https://github.com/BartekS5/salesflow"
	SchemaURL = "https://openlineage.io/spec/2-0-2/OpenLineage.json#/definitions/RunEvent"
)

type Run struct {
	RunID string `json:"runId" bson:"runId"`
}

type Job struct {
	Namespace string `json:"namespace" bson:"namespace"`
	Name      string `json:"name" bson:"name"`
}

type SchemaFacet struct {
	Fields []models.SchemaField `json:"fields" bson:"fields"`
}

type DatasetFacets struct {
	Schema *SchemaFacet `json:"schema,omitempty" bson:"schema,omitempty"`
}

// Dataset is the wire form of models.Dataset.
type Dataset struct {
	Namespace string         `json:"namespace" bson:"namespace"`
	Name      string         `json:"name" bson:"name"`
	Facets    *DatasetFacets `json:"facets,omitempty" bson:"facets,omitempty"`
}

type RunEvent struct {
	EventType EventType `json:"eventType" bson:"eventType"`
	EventTime time.Time `json:"eventTime" bson:"eventTime"`
	Run       Run       `json:"run" bson:"run"`
	Job       Job       `json:"job" bson:"job"`
	Inputs    []Dataset `json:"inputs" bson:"inputs"`
	Outputs   []Dataset `json:"outputs" bson:"outputs"`
	Producer  string    `json:"producer" bson:"producer"`
	SchemaURL string    `json:"schemaURL" bson:"schemaURL"`
	// Error is set on FAIL events.
	Error string `json:"error,omitempty" bson:"error,omitempty"`
}

func toWire(in []models.Dataset) []Dataset {
	out := make([]Dataset, 0, len(in))
	for _, d := range in {
		w := Dataset{Namespace: d.Namespace, Name: d.Name}
		if len(d.Fields) > 0 {
			w.Facets = &DatasetFacets{Schema: &SchemaFacet{Fields: d.Fields}}
		}
		out = append(out, w)
	}
	return out
}
