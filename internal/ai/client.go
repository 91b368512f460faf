package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"task-secretary-api/internal/cache"
	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/models"

	"golang.org/x/sync/singleflight"
)

// Brief is the part of a task the model sees.
type Brief struct {
	Description string
	Category    string
	Deadline    string
	Today       time.Time
}

// Decomposition is an ordered list of step names plus the model's classification.
type Decomposition struct {
	Steps      []string          `json:"steps"`
	Type       models.TaskType   `json:"type"`
	Complexity models.Complexity `json:"complexity"`
}

// Fallback is the single-step decomposition used whenever the model cannot help.
func Fallback(description string) Decomposition {
	return Decomposition{
		Steps:      []string{description},
		Type:       models.TypeOneOff,
		Complexity: models.ComplexitySimple,
	}
}

// MaxSteps is the step cap for a classification.
func MaxSteps(t models.TaskType, c models.Complexity) int {
	if c == models.ComplexitySimple && (t == models.TypeOneOff || t == models.TypeHabit) {
		return 3
	}
	return 5
}

// Client decomposes and schedules tasks through a Generator. Every failure
// degrades to a deterministic result; only Assist reports errors.
type Client struct {
	gen   Generator
	cache *cache.TTL[string, Decomposition]
	group singleflight.Group
}

func NewClient(gen Generator, cacheTTL time.Duration) *Client {
	return &Client{
		gen:   gen,
		cache: cache.NewTTL[string, Decomposition](cacheTTL),
	}
}

func cacheKey(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:])
}

// Decompose splits a task into steps. It never fails.
func (c *Client) Decompose(ctx context.Context, b Brief) Decomposition {
	userPrompt := decomposeContext(b)
	key := cacheKey(decomposePrompt, userPrompt)
	if d, ok := c.cache.Get(key); ok {
		return cloneDecomposition(d)
	}

	// The shared call outlives any single caller; each caller stops waiting
	// on its own context.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		text, err := c.gen.Generate(shared, decomposePrompt, userPrompt)
		if err != nil {
			return nil, err
		}
		d, err := parseDecomposition(text, b.Description)
		if err != nil {
			return nil, err
		}
		c.cache.Put(key, d)
		return d, nil
	})

	select {
	case <-ctx.Done():
		log.Printf("ai: decomposition abandoned: %v", ctx.Err())
		return Fallback(b.Description)
	case res := <-ch:
		if res.Err != nil {
			log.Printf("ai: decomposition failed, using single step: %v", res.Err)
			return Fallback(b.Description)
		}
		return cloneDecomposition(res.Val.(Decomposition))
	}
}

// SweepCache drops expired decompositions every interval until ctx is done.
func (c *Client) SweepCache(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.cache.Purge(); n > 0 {
				log.Printf("ai: dropped %d expired decompositions, %d still cached", n, c.cache.Len())
			}
		}
	}
}

func cloneDecomposition(d Decomposition) Decomposition {
	d.Steps = append([]string(nil), d.Steps...)
	return d
}

func parseDecomposition(text, description string) (Decomposition, error) {
	var raw struct {
		Type       string   `json:"type"`
		Complexity string   `json:"complexity"`
		Steps      []string `json:"steps"`
	}
	if err := ExtractJSON(text, &raw); err != nil {
		return Decomposition{}, err
	}

	d := Decomposition{
		Type:       models.ParseTaskType(raw.Type),
		Complexity: models.ParseComplexity(raw.Complexity),
	}
	for _, s := range raw.Steps {
		if s = strings.TrimSpace(s); s != "" {
			d.Steps = append(d.Steps, s)
		}
	}
	if len(d.Steps) == 0 {
		d.Steps = []string{description}
	}
	if limit := MaxSteps(d.Type, d.Complexity); len(d.Steps) > limit {
		d.Steps = d.Steps[:limit]
	}
	return d, nil
}

// Schedule asks the model to date each step. A nil result means the caller
// should fall back to the local heuristic.
func (c *Client) Schedule(ctx context.Context, b Brief, d Decomposition) []models.Subtask {
	text, err := c.gen.Generate(ctx, schedulePrompt, scheduleContext(b, d))
	if err != nil {
		log.Printf("ai: scheduling failed, falling back to local spread: %v", err)
		return nil
	}
	subs, err := parseSchedule(text)
	if err != nil {
		log.Printf("ai: unreadable schedule, falling back to local spread: %v", err)
		return nil
	}
	return subs
}

func parseSchedule(text string) ([]models.Subtask, error) {
	var raw struct {
		Schedule []models.Subtask `json:"schedule"`
	}
	if err := ExtractJSON(text, &raw); err != nil {
		return nil, err
	}

	out := make([]models.Subtask, 0, len(raw.Schedule))
	for _, s := range raw.Schedule {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		s.Date = dates.Normalize(s.Date)
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, errors.New("ai: empty schedule")
	}
	models.Renumber(out)
	return out, nil
}

// Assist returns a free-form plan for a task.
func (c *Client) Assist(ctx context.Context, title, description string) (string, error) {
	text, err := c.gen.Generate(ctx, assistPrompt, assistContext(title, description))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("ai: empty answer")
	}
	return text, nil
}
