package curriculum

import (
	"fmt"
	"slices"
)

// Topic is a single node in the curriculum. A topic groups named subtopics.
type Topic struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Subtopics []string `json:"subtopics"`
}

// Section is an ordered group of topics.
type Section struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Topics []Topic `json:"topics"`
}

// Catalog is an immutable, ordered curriculum with precomputed indices.
type Catalog struct {
	sections  []Section
	topics    []Topic
	byID      map[string]int
	sectionOf map[string]int
}

// New builds a Catalog from sections. Topic IDs must be unique and non-empty.
func New(sections []Section) (*Catalog, error) {
	c := &Catalog{
		byID:      make(map[string]int),
		sectionOf: make(map[string]int),
	}

	for si, s := range sections {
		sec := Section{Key: s.Key, Title: s.Title}
		for _, t := range s.Topics {
			if t.ID == "" {
				return nil, fmt.Errorf("section %q: topic with empty id", s.Key)
			}
			if _, dup := c.byID[t.ID]; dup {
				return nil, fmt.Errorf("duplicate topic id: %q", t.ID)
			}
			topic := Topic{ID: t.ID, Title: t.Title, Subtopics: slices.Clone(t.Subtopics)}
			c.byID[t.ID] = len(c.topics)
			c.sectionOf[t.ID] = si
			c.topics = append(c.topics, topic)
			sec.Topics = append(sec.Topics, topic)
		}
		c.sections = append(c.sections, sec)
	}

	return c, nil
}

// MustNew is like New but panics on error. Intended for static seed data.
func MustNew(sections []Section) *Catalog {
	c, err := New(sections)
	if err != nil {
		panic(err)
	}
	return c
}

// Sections returns all sections in display order.
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		out[i] = Section{Key: s.Key, Title: s.Title, Topics: cloneTopics(s.Topics)}
	}
	return out
}

// AllTopics returns every topic flattened in catalog order.
func (c *Catalog) AllTopics() []Topic {
	return cloneTopics(c.topics)
}

// Topic returns the topic with the given ID.
func (c *Catalog) Topic(id string) (Topic, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Topic{}, false
	}
	return cloneTopic(c.topics[i]), true
}

// SectionTitle returns the title of the section containing topicID,
// or "" if the topic is unknown.
func (c *Catalog) SectionTitle(topicID string) string {
	si, ok := c.sectionOf[topicID]
	if !ok {
		return ""
	}
	return c.sections[si].Title
}

// Next returns the topic following id in catalog order. It returns false
// when id is unknown or is the last topic.
func (c *Catalog) Next(id string) (Topic, bool) {
	i, ok := c.byID[id]
	if !ok || i == len(c.topics)-1 {
		return Topic{}, false
	}
	return cloneTopic(c.topics[i+1]), true
}

// Index returns the position of a topic in catalog order, or -1.
func (c *Catalog) Index(id string) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return -1
}

// TotalTopics returns the number of topics across all sections.
func (c *Catalog) TotalTopics() int {
	return len(c.topics)
}

func cloneTopic(t Topic) Topic {
	return Topic{ID: t.ID, Title: t.Title, Subtopics: slices.Clone(t.Subtopics)}
}

func cloneTopics(ts []Topic) []Topic {
	out := make([]Topic, len(ts))
	for i, t := range ts {
		out[i] = cloneTopic(t)
	}
	return out
}
