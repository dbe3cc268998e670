// Package ioc provides an application-context container for Go programs.
// Entity classes are registered up front and the container boots them in a
// single, ordered pass.
//
// # Overview
//
// The container manages four kinds of entities:
//   - Components: Singleton or Prototype classes with lifecycle hooks
//   - Controllers: request-handling classes mounted by the HTTP adapter
//   - Bean collections: classes whose Create methods produce named beans
//   - Properties: typed schemas loaded from a JSON or YAML document
//
// # Basic Usage
//
// Describe each class with ClassOf or StructOf, add the classes, run the
// container and look entities up:
//
//	c := ioc.New(ioc.WithPropertiesPath("application-properties.json"))
//	if err := c.Add(
//	    ioc.StructOf[UserRepository](),
//	    ioc.StructOf[UserService](),
//	    ioc.StructOf[DatabaseProperties](),
//	); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := c.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close(ctx)
//
//	svc, err := ioc.Resolve[*UserService](c)
//
// # Capabilities
//
// A class is classified by the methods its type exposes. Embed a base to
// get the default capability:
//
//	type UserService struct {
//	    ioc.BaseComponent          // Singleton
//	    Repo *UserRepository
//	}
//
//	type RequestContext struct {
//	    ioc.BasePrototype          // fresh instance per lookup
//	    ID string
//	}
//
// Each prototype lookup allocates a new instance, but a prototype with no
// fields of its own is zero-size and its pointers may compare equal.
//
//	type DatabaseProperties struct {
//	    Host string
//	    Port int
//	}
//
//	func (*DatabaseProperties) PropertiesKey() string { return "database" }
//
// # Dependencies
//
// Injectable fields are declared explicitly, once per class, with Field.
// There is no struct tag scanning:
//
//	func (*UserService) Dependencies() []ioc.Dependency {
//	    return []ioc.Dependency{
//	        ioc.Field("Repo", func(s *UserService) **UserRepository { return &s.Repo }),
//	    }
//	}
//
// A field resolves to the loaded properties when its type is a registered
// properties class, otherwise to the component and then the bean whose name
// is the field type's name with pointers stripped. Scalar fields are
// skipped.
//
// # Beans
//
// Every exported method of a bean collection whose name starts with Create
// is a factory. Its parameters are bound by type to loaded properties and
// previously produced beans:
//
//	type InfraBeans struct{ ioc.BaseBeanCollection }
//
//	func (*InfraBeans) CreateDB(p *DatabaseProperties) (*sql.DB, error) {
//	    return sql.Open("postgres", p.DSN())
//	}
//
// # Bootstrap Order
//
// Run executes these phases and fails fast with a BuildError naming the
// phase:
//
//  1. properties: the document is loaded and validated
//  2. singletons: singleton components and controllers are constructed
//  3. beans: collections are injected and their factories invoked
//  4. injection: components and controllers receive their fields
//  5. lifecycle: PreInit, Init and PostInit hooks run in construction order
//
// Close runs PreDestroy, Destroy and PostDestroy in reverse construction
// order.
//
// # Error Handling
//
// Errors are typed and support errors.As:
//
//	var conflict ioc.NameConflictError
//	if errors.As(err, &conflict) {
//	    log.Printf("%s is registered twice", conflict.Name)
//	}
package ioc
