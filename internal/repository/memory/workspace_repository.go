package memory

import (
	"time"

	"legalai-be/pkg/chat"
	"legalai-be/pkg/draft"
	"legalai-be/pkg/summary"

	"github.com/patrickmn/go-cache"
)

const (
	chatPrefix  = "chat:"
	draftPrefix = "draft:"
	jobPrefix   = "job:"
)

// WorkspaceRepository holds the per-user chat sessions and draft workflows and
// the summary jobs. Idle entries expire; an evicted entry is reset or removed so
// in-flight calls are cancelled and uploaded files released.
type WorkspaceRepository struct {
	cache *cache.Cache
}

func NewWorkspaceRepository(ttl, cleanup time.Duration) *WorkspaceRepository {
	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(_ string, v interface{}) {
		switch item := v.(type) {
		case *chat.Session:
			item.Reset()
		case *draft.Workflow:
			item.Reset()
		case *summary.Job:
			_ = item.Remove()
		}
	})
	return &WorkspaceRepository{cache: c}
}

// getOrAdd returns the existing entry for key or stores the one built by create.
func (r *WorkspaceRepository) getOrAdd(key string, create func() interface{}) interface{} {
	if x, found := r.cache.Get(key); found {
		r.cache.SetDefault(key, x)
		return x
	}
	v := create()
	if err := r.cache.Add(key, v, cache.DefaultExpiration); err != nil {
		// Lost the race; another request created it first.
		if x, found := r.cache.Get(key); found {
			return x
		}
	}
	return v
}

func (r *WorkspaceRepository) ChatSession(subject string, create func() *chat.Session) *chat.Session {
	return r.getOrAdd(chatPrefix+subject, func() interface{} { return create() }).(*chat.Session)
}

func (r *WorkspaceRepository) DraftWorkflow(subject string, create func() *draft.Workflow) *draft.Workflow {
	return r.getOrAdd(draftPrefix+subject, func() interface{} { return create() }).(*draft.Workflow)
}

func (r *WorkspaceRepository) SaveJob(job *summary.Job) {
	r.cache.Set(jobPrefix+job.ID(), job, cache.DefaultExpiration)
}

func (r *WorkspaceRepository) Job(id string) (*summary.Job, bool) {
	if x, found := r.cache.Get(jobPrefix + id); found {
		return x.(*summary.Job), true
	}
	return nil, false
}

// DeleteJob evicts the job, which removes it and releases its file.
func (r *WorkspaceRepository) DeleteJob(id string) {
	r.cache.Delete(jobPrefix + id)
}
