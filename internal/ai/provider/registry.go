package provider

import "fmt"

// Registry maps model ids (e.g. "chat-model-small") to language model
// endpoints. It is built once at startup and injected wherever a model is
// selected by string id, so tests can substitute fakes.
type Registry struct {
	models    map[string]LanguageModel
	defaultID string
}

// NewRegistry creates an empty registry whose Resolve falls back to defaultID.
func NewRegistry(defaultID string) *Registry {
	return &Registry{
		models:    make(map[string]LanguageModel),
		defaultID: defaultID,
	}
}

// Register binds a model id to an endpoint. Later registrations win.
func (r *Registry) Register(id string, model LanguageModel) {
	r.models[id] = model
}

// Resolve returns the endpoint for id, falling back to the default model when
// the id is unknown or empty.
func (r *Registry) Resolve(id string) (LanguageModel, error) {
	if model, ok := r.models[id]; ok {
		return model, nil
	}
	if model, ok := r.models[r.defaultID]; ok {
		return model, nil
	}
	return nil, fmt.Errorf("no model registered for id %q and no default available", id)
}
