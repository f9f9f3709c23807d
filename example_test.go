package xdm_test

import (
	"fmt"
	"testing/fstest"

	"github.com/jacoelho/xdm"
)

func ExampleParseString() {
	doc := `<order id="o-1"><item sku="a">2</item><item sku="b">5</item></order>`

	t, err := xdm.ParseString(doc, xdm.NewParseOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	items := t.Root().IterateAxis(xdm.Descendant, xdm.NameTest{Kind: xdm.ElementNode, Local: "item"})
	for item := range xdm.All(items) {
		sku, _ := item.AttributeValue("", "sku")
		fmt.Printf("%s %s=%s\n", item.Path(), sku, item.StringValue())
	}
	// Output:
	// /order[1]/item[1] a=2
	// /order[1]/item[2] b=5
}

func ExampleID() {
	doc := `<book><chapter id="intro">Hello</chapter><chapter id="end">Bye</chapter></book>`
	opts := xdm.NewParseOptions().WithIDAttributes("id")

	t, err := xdm.ParseString(doc, opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	found, err := xdm.ID(t, "end intro")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for n := range xdm.All(found) {
		fmt.Println(n.StringValue())
	}
	// Output:
	// Hello
	// Bye
}

func ExampleUnparsedTextLines() {
	fsys := fstest.MapFS{
		"notes.txt": &fstest.MapFile{Data: []byte("first\r\nsecond\rthird\n")},
	}

	lines, err := xdm.Collect(xdm.UnparsedTextLines(fsys, "notes.txt", ""))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(lines)
	// Output: [first second third]
}
