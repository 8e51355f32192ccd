package docbind

// AssocKind enumerates the supported association kinds.
type AssocKind int

const (
	BelongsTo AssocKind = iota + 1
	HasOne
	HasMany
)

func (k AssocKind) String() string {
	switch k {
	case BelongsTo:
		return "belongs_to"
	case HasOne:
		return "has_one"
	case HasMany:
		return "has_many"
	}
	return "unknown"
}

// Hook names one point in the lifecycle-callback pipeline.
type Hook int

const (
	BeforeValidation Hook = iota
	AfterValidation
	BeforeCreate
	AfterCreate
	BeforeSave
	AfterSave
	hookCount
)

func (h Hook) String() string {
	switch h {
	case BeforeValidation:
		return "before_validation"
	case AfterValidation:
		return "after_validation"
	case BeforeCreate:
		return "before_create"
	case AfterCreate:
		return "after_create"
	case BeforeSave:
		return "before_save"
	case AfterSave:
		return "after_save"
	}
	return "unknown"
}

// Handler is a lifecycle hook or validator body.
type Handler func(*Document) error

// Association is one declared relationship. Name is both the accessor name
// and the attribute key the serialized value lives under; Target is the
// canonical type name resolved lazily through the registry at access time.
type Association struct {
	Kind   AssocKind
	Name   string
	Target string
}

// Schema is the declarative descriptor for one document type: declared
// fields, associations, lifecycle hooks and validators. It is built once at
// type-definition time and processed into lookup tables by Register; no
// per-instance work happens afterwards.
type Schema struct {
	name       string
	fields     map[string]struct{}
	assocs     map[string]Association
	hooks      [hookCount][]Handler
	validators []Handler
	factory    Factory
}

// NewSchema starts a descriptor for the named type. The name is
// demodularized so "blog.Post" and "Post" register identically.
func NewSchema(name string) *Schema {
	return &Schema{
		name:   demodularize(name),
		fields: make(map[string]struct{}),
		assocs: make(map[string]Association),
	}
}

// Fields declares the accessor field list. Calling Fields again fully
// replaces the previously declared list; nothing accumulates.
func (s *Schema) Fields(names ...string) *Schema {
	s.fields = make(map[string]struct{}, len(names))
	for _, n := range names {
		s.fields[normalizeKey(n)] = struct{}{}
	}
	return s
}

// BelongsTo declares a singular association to the type classified from
// name ("author" -> "Author").
func (s *Schema) BelongsTo(name string) *Schema {
	return s.associate(BelongsTo, name)
}

// HasOne declares a singular embedded association.
func (s *Schema) HasOne(name string) *Schema {
	return s.associate(HasOne, name)
}

// HasMany declares a plural association; the accessor keeps the plural
// name while the target type is its singular classification
// ("comments" -> "Comment").
func (s *Schema) HasMany(name string) *Schema {
	return s.associate(HasMany, name)
}

func (s *Schema) associate(kind AssocKind, name string) *Schema {
	key := normalizeKey(name)
	s.assocs[key] = Association{Kind: kind, Name: key, Target: classify(key)}
	return s
}

// On appends a handler to the named hook point. Handlers run in
// registration order; the first error aborts the pipeline.
func (s *Schema) On(h Hook, fn Handler) *Schema {
	s.hooks[h] = append(s.hooks[h], fn)
	return s
}

// Validate appends a validator, run between the BeforeValidation and
// AfterValidation hooks of every save.
func (s *Schema) Validate(fn Handler) *Schema {
	s.validators = append(s.validators, fn)
	return s
}

// ResolveWith overrides the association factory for this type. The default
// rehydrates embedded values from the owner's attributes.
func (s *Schema) ResolveWith(f Factory) *Schema {
	s.factory = f
	return s
}

func (s *Schema) declared(field string) bool {
	_, ok := s.fields[field]
	return ok
}
