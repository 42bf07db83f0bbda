package storage

import "context"

// Well-known keys. Values are always strings; absence means "not set".
const (
	KeyToken      = "token"
	KeyUserID     = "userId"
	KeySubject    = "sub"
	KeyRole       = "role"
	KeyCurrentOrg = "currentOrg"
)

// Batch is a set of writes applied together. Remove runs after Put, so a key
// present in both ends up absent.
type Batch struct {
	Put    map[string]string
	Remove []string
}

func (b Batch) empty() bool { return len(b.Put) == 0 && len(b.Remove) == 0 }

// Store is durable key/value storage for client state. Apply is all or
// nothing.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Apply(ctx context.Context, batch Batch) error
}

func Set(ctx context.Context, st Store, values map[string]string) error {
	return st.Apply(ctx, Batch{Put: values})
}

func Delete(ctx context.Context, st Store, keys ...string) error {
	return st.Apply(ctx, Batch{Remove: keys})
}

// Scoped namespaces every key under a tab prefix so several tabs can share
// one backing store.
type Scoped struct {
	inner  Store
	prefix string
}

func NewScoped(inner Store, tabID string) *Scoped {
	return &Scoped{inner: inner, prefix: "console:" + tabID + ":"}
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Apply(ctx context.Context, batch Batch) error {
	scoped := Batch{}
	if len(batch.Put) > 0 {
		scoped.Put = make(map[string]string, len(batch.Put))
		for k, v := range batch.Put {
			scoped.Put[s.prefix+k] = v
		}
	}
	for _, k := range batch.Remove {
		scoped.Remove = append(scoped.Remove, s.prefix+k)
	}
	return s.inner.Apply(ctx, scoped)
}
