package curriculum

// defaultCatalog is the Python OOP curriculum served by the tutor.
var defaultCatalog = MustNew([]Section{
	{
		Key:   "BASICS",
		Title: "Basic OOP Concepts",
		Topics: []Topic{
			{ID: "classes_objects", Title: "Classes and Objects", Subtopics: []string{"Class Definition", "Object Instantiation", "self Parameter"}},
			{ID: "attributes_methods", Title: "Attributes and Methods", Subtopics: []string{"Instance Attributes", "Instance Methods", "Class Attributes"}},
		},
	},
	{
		Key:   "INTERMEDIATE",
		Title: "Intermediate Concepts",
		Topics: []Topic{
			{ID: "inheritance", Title: "Inheritance", Subtopics: []string{"Single Inheritance", "Method Overriding", "super() Function"}},
			{ID: "encapsulation", Title: "Encapsulation", Subtopics: []string{"Private Attributes", "Property Decorators", "Getter/Setter Methods"}},
			{ID: "polymorphism", Title: "Polymorphism", Subtopics: []string{"Method Overriding", "Duck Typing", "Operator Overloading"}},
		},
	},
	{
		Key:   "ADVANCED",
		Title: "Advanced Concepts",
		Topics: []Topic{
			{ID: "special_methods", Title: "Special Methods", Subtopics: []string{"__init__", "__str__", "__repr__", "__len__", "__call__"}},
			{ID: "multiple_inheritance", Title: "Multiple Inheritance", Subtopics: []string{"MRO (Method Resolution Order)", "Diamond Problem", "Mixins"}},
			{ID: "metaclasses", Title: "Metaclasses", Subtopics: []string{"Class Creation", "Class Customization", "Abstract Base Classes"}},
		},
	},
	{
		Key:   "DESIGN_PATTERNS",
		Title: "Design Patterns",
		Topics: []Topic{
			{ID: "creational", Title: "Creational Patterns", Subtopics: []string{"Singleton", "Factory Method", "Abstract Factory"}},
			{ID: "structural", Title: "Structural Patterns", Subtopics: []string{"Adapter", "Decorator", "Facade"}},
			{ID: "behavioral", Title: "Behavioral Patterns", Subtopics: []string{"Observer", "Strategy", "Command"}},
		},
	},
	{
		Key:   "BEST_PRACTICES",
		Title: "Best Practices",
		Topics: []Topic{
			{ID: "solid_principles", Title: "SOLID Principles", Subtopics: []string{
				"Single Responsibility",
				"Open/Closed",
				"Liskov Substitution",
				"Interface Segregation",
				"Dependency Inversion",
			}},
			{ID: "code_organization", Title: "Code Organization", Subtopics: []string{"Module Structure", "Package Organization", "Import Management"}},
		},
	},
})

// Default returns the built-in Python OOP catalog.
func Default() *Catalog {
	return defaultCatalog
}

// AllTopics returns every topic of the default catalog in order.
func AllTopics() []Topic {
	return defaultCatalog.AllTopics()
}

// TopicByID looks up a topic in the default catalog along with the title
// of the section it belongs to.
func TopicByID(id string) (Topic, string, bool) {
	t, ok := defaultCatalog.Topic(id)
	if !ok {
		return Topic{}, "", false
	}
	return t, defaultCatalog.SectionTitle(id), true
}
