package art

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestLeaf(p *pool[int], key string, value int) ref {
	return newLeaf(p, []byte(key), value).ref()
}

func TestNode4(t *testing.T) {
	Convey("Given a Node4", t, func() {
		p := newPool[int]()
		node := getNode4()
		r := newRef(typeNode4, node)

		Convey("When checking basic properties", func() {
			So(r.typ(), ShouldEqual, typeNode4)
			So(r.isNode4(), ShouldBeTrue)
			So(r.isInner(), ShouldBeTrue)
			So(node.full(), ShouldBeFalse)
			So(node.numChildren, ShouldEqual, 0)
		})

		Convey("When adding children", func() {
			child1 := newTestLeaf(p, "a", 1)
			child2 := newTestLeaf(p, "b", 2)
			child3 := newTestLeaf(p, "c", 3)
			child4 := newTestLeaf(p, "d", 4)

			Convey("Adding first child", func() {
				node.addChild('a', child1)

				So(node.numChildren, ShouldEqual, 1)
				So(node.keys[0], ShouldEqual, byte('a'))
				So(node.children[0], ShouldEqual, child1)
			})

			Convey("Adding children in order", func() {
				node.addChild('a', child1)
				node.addChild('b', child2)
				node.addChild('c', child3)

				So(node.numChildren, ShouldEqual, 3)
				So(node.keys[0], ShouldEqual, byte('a'))
				So(node.keys[1], ShouldEqual, byte('b'))
				So(node.keys[2], ShouldEqual, byte('c'))
			})

			Convey("Adding children out of order keeps the keys sorted", func() {
				node.addChild('d', child4)
				node.addChild('b', child2)
				node.addChild('a', child1)
				node.addChild('c', child3)

				So(node.numChildren, ShouldEqual, 4)
				So(node.keys[0], ShouldEqual, byte('a'))
				So(node.keys[1], ShouldEqual, byte('b'))
				So(node.keys[2], ShouldEqual, byte('c'))
				So(node.keys[3], ShouldEqual, byte('d'))
				So(node.children[1], ShouldEqual, child2)
				So(node.full(), ShouldBeTrue)
			})
		})

		Convey("When finding children", func() {
			child1 := newTestLeaf(p, "a", 1)
			child2 := newTestLeaf(p, "b", 2)

			node.addChild('a', child1)
			node.addChild('b', child2)

			Convey("Finding existing children", func() {
				found := node.findChild('a')
				So(found, ShouldNotBeNil)
				So(*found, ShouldEqual, child1)

				found = node.findChild('b')
				So(found, ShouldNotBeNil)
				So(*found, ShouldEqual, child2)
			})

			Convey("Finding non-existent children", func() {
				So(node.findChild('x'), ShouldBeNil)
				So(node.findChild(0), ShouldBeNil)
			})
		})

		Convey("When removing children", func() {
			child1 := newTestLeaf(p, "a", 1)
			child2 := newTestLeaf(p, "b", 2)
			child3 := newTestLeaf(p, "c", 3)

			node.addChild('a', child1)
			node.addChild('b', child2)
			node.addChild('c', child3)

			Convey("Removing the middle entry shifts neighbours down", func() {
				slot := node.findChild('b')
				node.removeChildAt(node.indexOf(slot))

				So(node.numChildren, ShouldEqual, 2)
				So(node.keys[0], ShouldEqual, byte('a'))
				So(node.keys[1], ShouldEqual, byte('c'))
				So(node.findChild('b'), ShouldBeNil)
			})

			Convey("Removing down to a sole child", func() {
				node.removeChildAt(node.indexOf(node.findChild('a')))
				node.removeChildAt(node.indexOf(node.findChild('c')))

				So(node.numChildren, ShouldEqual, 1)

				b, sole := node.soleChild()
				So(b, ShouldEqual, byte('b'))
				So(sole, ShouldEqual, child2)
			})
		})

		Convey("When growing into a Node16", func() {
			node.addChild('d', newTestLeaf(p, "d", 4))
			node.addChild('a', newTestLeaf(p, "a", 1))
			node.addChild('c', newTestLeaf(p, "c", 3))
			node.addChild('b', newTestLeaf(p, "b", 2))

			So(node.full(), ShouldBeTrue)

			grown := node.grow()

			So(grown.numChildren, ShouldEqual, 4)
			So(grown.keys[0], ShouldEqual, byte('a'))
			So(grown.keys[3], ShouldEqual, byte('d'))

			Convey("Then the grown node starts with its own unlocked version word", func() {
				writeLock(&node.header)

				So(isLocked(grown.version.Load()), ShouldBeFalse)

				writeUnlock(&node.header)
			})

			Convey("And every child remains findable", func() {
				for _, b := range []byte{'a', 'b', 'c', 'd'} {
					So(grown.findChild(b), ShouldNotBeNil)
				}
			})
		})

		Convey("When taking the minimum", func() {
			So(node.minimum(), ShouldEqual, ref(0))

			min := newTestLeaf(p, "a", 1)
			node.addChild('c', newTestLeaf(p, "c", 3))
			node.addChild('a', min)

			So(node.minimum(), ShouldEqual, min)
		})
	})
}
