// Package policy decides who may perform privileged mutations on the board.
package policy

import "github.com/amishk599/jobboard/internal/model"

// Policy answers authorization questions for the record store and the API.
type Policy interface {
	CanDeleteJob(requesterID string, job model.Job) bool
	IsAdmin(requesterID string) bool
}

// OwnerOrAdmin lets a job's owner or the single configured administrator
// delete it. An empty requester never matches, even against an unowned job.
type OwnerOrAdmin struct {
	AdminID string
}

var _ Policy = OwnerOrAdmin{}

// IsAdmin reports whether requesterID is the configured administrator.
func (p OwnerOrAdmin) IsAdmin(requesterID string) bool {
	return requesterID != "" && p.AdminID != "" && requesterID == p.AdminID
}

// CanDeleteJob reports whether requesterID owns job or is the administrator.
func (p OwnerOrAdmin) CanDeleteJob(requesterID string, job model.Job) bool {
	if requesterID == "" {
		return false
	}
	return job.OwnerID == requesterID || p.IsAdmin(requesterID)
}
