package dto

import (
	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/conflicts"
	instsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/service"
)

type MaterializedResponse struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Preserved int `json:"preserved"`
}

func FromResult(r instsvc.Result) MaterializedResponse {
	return MaterializedResponse{Created: r.Created, Updated: r.Updated, Removed: r.Removed, Preserved: r.Preserved}
}

type OutcomeResponse struct {
	Class        ClassResponse            `json:"class"`
	Materialized MaterializedResponse     `json:"materialized"`
	Forced       []conflicts.ConflictInfo `json:"forced_conflicts,omitempty"`
}

func FromOutcome(o classsvc.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Class:        FromClass(o.Class),
		Materialized: FromResult(o.Materialized),
		Forced:       o.Conflicts,
	}
}
