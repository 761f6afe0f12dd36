package translations

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/utils"

	"gopkg.in/yaml.v3"
)

const DefaultNamespace = "translation"

//go:embed seed.yaml
var seedYAML []byte

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) normalize(t models.Translation) (models.Translation, error) {
	t.Lang = utils.LowerCode(t.Lang)
	t.Namespace = strings.TrimSpace(t.Namespace)
	t.Key = strings.TrimSpace(t.Key)
	if t.Namespace == "" {
		t.Namespace = DefaultNamespace
	}
	if t.Lang == "" || t.Key == "" {
		return t, utils.Invalid("lang and key are required")
	}
	if strings.HasPrefix(t.Key, ".") || strings.HasSuffix(t.Key, ".") || strings.Contains(t.Key, "..") {
		return t, utils.Invalid("key must not have empty segments")
	}
	t.UpdatedAt = s.now().UTC()
	return t, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Translation, error) {
	f.Lang = utils.LowerCode(f.Lang)
	f.Namespace = strings.TrimSpace(f.Namespace)
	return s.store.List(ctx, f)
}

func (s *Service) Upsert(ctx context.Context, t models.Translation) (models.Translation, error) {
	t, err := s.normalize(t)
	if err != nil {
		return t, err
	}
	return t, s.store.Upsert(ctx, t)
}

func (s *Service) Delete(ctx context.Context, lang, namespace, key string) error {
	ok, err := s.store.Delete(ctx, utils.LowerCode(lang), namespace, key)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NotFound("Translation not found")
	}
	return nil
}

// Bundle returns the namespace for lang as a nested object.
func (s *Service) Bundle(ctx context.Context, lang, namespace string) (map[string]any, error) {
	rows, err := s.List(ctx, Filter{Lang: lang, Namespace: namespace})
	if err != nil {
		return nil, err
	}
	flat := make(map[string]string, len(rows))
	for _, r := range rows {
		flat[r.Key] = r.Value
	}
	return Unflatten(flat), nil
}

// Unflatten turns dotted keys into nested objects. Keys are applied in sorted order and
// a scalar found where an object is needed is replaced by an object.
func Unflatten(flat map[string]string) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := map[string]any{}
	for _, k := range keys {
		parts := strings.Split(k, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = flat[k]
	}
	return out
}

// ParseYAML reads documents shaped as lang -> namespace -> key -> value.
func ParseYAML(raw []byte) ([]models.Translation, error) {
	var doc map[string]map[string]map[string]string
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse translations yaml: %w", err)
	}
	var out []models.Translation
	for lang, namespaces := range doc {
		for ns, kv := range namespaces {
			for k, v := range kv {
				out = append(out, models.Translation{Lang: lang, Namespace: ns, Key: k, Value: v})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Lang != b.Lang {
			return a.Lang < b.Lang
		}
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Key < b.Key
	})
	return out, nil
}

// Load writes rows parsed from raw. With overwrite false existing rows are kept.
// It returns how many rows were written.
func (s *Service) Load(ctx context.Context, raw []byte, overwrite bool) (int, error) {
	rows, err := ParseYAML(raw)
	if err != nil {
		return 0, utils.Invalid("%v", err)
	}
	written := 0
	for _, r := range rows {
		t, err := s.normalize(r)
		if err != nil {
			return written, err
		}
		if overwrite {
			if err := s.store.Upsert(ctx, t); err != nil {
				return written, err
			}
			written++
			continue
		}
		ok, err := s.store.InsertMissing(ctx, t)
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

// Seed inserts the built-in strings without touching edited rows.
func (s *Service) Seed(ctx context.Context) (int, error) {
	return s.Load(ctx, seedYAML, false)
}
