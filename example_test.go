package indugraph_test

import (
	"fmt"
	"log"

	"github.com/indugraph/indugraph"
	"github.com/indugraph/indugraph/aspects"
	"github.com/indugraph/indugraph/attr"
	"github.com/indugraph/indugraph/graph"
)

// Example ingests one wiring row and shows that re-deriving the same
// entities merges instead of duplicating.
func Example() {
	session, err := indugraph.NewSession(aspects.Default())
	if err != nil {
		log.Fatal(err)
	}

	page := &indugraph.PageRef{Page: 12, Source: "cabinet.pdf"}
	color, err := session.CreateAttribute(attr.KindSimple, "color", "bn")
	if err != nil {
		log.Fatal(err)
	}

	// One wiring row: pin 1 of =A1+K1 wired to pin 4 of =A1+K2 through
	// cable -W1.
	conn, err := session.CreateLinkedConnection("-W1", "=A1+K1:1", "=A1+K2:4",
		[]attr.Attribute{color}, page)
	if err != nil {
		log.Fatal(err)
	}

	// The same row on another page merges into the same connection.
	again, err := session.CreateLinkedConnection("-W1", "=A1+K2:4", "=A1+K1:1",
		nil, &indugraph.PageRef{Page: 13, Source: "cabinet.pdf"})
	if err != nil {
		log.Fatal(err)
	}

	st := session.Stats()
	fmt.Println("same connection:", conn == again)
	fmt.Println("targets:", st.Targets)
	fmt.Println("links:", st.Links)
	fmt.Println("pages of connection:", len(session.PagesOfObject(conn)))
	// Output:
	// same connection: true
	// targets: 3
	// links: 1
	// pages of connection: 2
}

// ExampleSession_CreateTarget shows target identity resolution.
func ExampleSession_CreateTarget() {
	session, err := indugraph.NewSession(aspects.Default())
	if err != nil {
		log.Fatal(err)
	}

	a, _ := session.CreateTarget("=A1+K1", graph.KindDevice, nil, nil)
	b, _ := session.CreateTarget(" =A1 +K1 ", graph.KindDevice, nil, nil)

	fmt.Println("same instance:", a == b)
	fmt.Println("name:", a.Name(session.Config()))
	// Output:
	// same instance: true
	// name: =A1+K1
}
