package command

import (
	"github.com/sandevgo/rolecast/internal/core"
)

// NewRouter wires the full command set against the given store.
func NewRouter(store core.MemoryStore) *Router {
	return New([]core.Command{
		NewForgetCmd(store),
		NewForgetAllCmd(store),
		NewMemoryCmd(store),
	})
}
