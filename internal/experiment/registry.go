package experiment

import (
	"sort"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/maps"
)

type Registry struct {
	maps map[string]func() dynamo.Map
}

func NewRegistry() *Registry {
	r := &Registry{
		maps: make(map[string]func() dynamo.Map),
	}

	r.maps["logistic"] = func() dynamo.Map { return maps.NewLogistic() }
	r.maps["henon"] = func() dynamo.Map { return maps.NewHenon() }
	r.maps["torus"] = func() dynamo.Map { return maps.NewTorus() }
	r.maps["linear"] = func() dynamo.Map { return maps.NewLinear() }
	r.maps["flip"] = func() dynamo.Map { return maps.NewFlip() }
	r.maps["pitchfork"] = func() dynamo.Map { return maps.NewPitchfork() }
	r.maps["transcritical"] = func() dynamo.Map { return maps.NewTranscritical() }
	r.maps["saddle-node"] = func() dynamo.Map { return maps.NewSaddleNode() }
	r.maps["hopf"] = func() dynamo.Map { return maps.NewHopf() }

	return r
}

// Register adds or replaces a map constructor.
func (r *Registry) Register(name string, fn func() dynamo.Map) {
	r.maps[name] = fn
}

func (r *Registry) GetMap(name string) (dynamo.Map, error) {
	fn, ok := r.maps[name]
	if !ok {
		return nil, dynamo.Invalidf("unknown map: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMaps() []string {
	names := make([]string, 0, len(r.maps))
	for name := range r.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
