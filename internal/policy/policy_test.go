package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amishk599/jobboard/internal/model"
)

func TestOwnerOrAdmin_CanDeleteJob(t *testing.T) {
	p := OwnerOrAdmin{AdminID: "ADMIN_1"}
	owned := model.Job{ID: "j1", OwnerID: "u1"}
	unowned := model.Job{ID: "j2"}

	tests := []struct {
		name      string
		requester string
		job       model.Job
		want      bool
	}{
		{name: "owner", requester: "u1", job: owned, want: true},
		{name: "admin on owned", requester: "ADMIN_1", job: owned, want: true},
		{name: "admin on unowned", requester: "ADMIN_1", job: unowned, want: true},
		{name: "stranger", requester: "u2", job: owned, want: false},
		{name: "empty requester on unowned", requester: "", job: unowned, want: false},
		{name: "empty requester on owned", requester: "", job: owned, want: false},
		{name: "system owner is not a user", requester: "u1", job: model.Job{OwnerID: model.SystemOwner}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanDeleteJob(tt.requester, tt.job))
		})
	}
}

func TestOwnerOrAdmin_EmptyAdminNeverMatches(t *testing.T) {
	p := OwnerOrAdmin{}
	assert.False(t, p.IsAdmin(""))
	assert.False(t, p.IsAdmin("anyone"))
	assert.False(t, p.CanDeleteJob("anyone", model.Job{OwnerID: "someone-else"}))
}
