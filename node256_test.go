package art

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNode256(t *testing.T) {
	Convey("Given a Node256", t, func() {
		p := newPool[int]()
		node := getNode256()

		Convey("When checking basic properties", func() {
			So(node.full(), ShouldBeFalse)
			So(node.numChildren, ShouldEqual, 0)
			So(node.findChild(0), ShouldBeNil)
			So(node.findChild(255), ShouldBeNil)
		})

		Convey("When adding children, presence is a non-empty slot", func() {
			c0 := newTestLeaf(p, "\x00", 0)
			cMid := newTestLeaf(p, "m", 1)
			cMax := newTestLeaf(p, "\xff", 2)

			node.addChild(0, c0)
			node.addChild('m', cMid)
			node.addChild(255, cMax)

			So(node.numChildren, ShouldEqual, 3)
			So(*node.findChild(0), ShouldEqual, c0)
			So(*node.findChild('m'), ShouldEqual, cMid)
			So(*node.findChild(255), ShouldEqual, cMax)
			So(node.findChild('n'), ShouldBeNil)
		})

		Convey("When removing a child the slot is cleared", func() {
			node.addChild('a', newTestLeaf(p, "a", 1))
			node.addChild('b', newTestLeaf(p, "b", 2))

			node.removeChild('a')

			So(node.numChildren, ShouldEqual, 1)
			So(node.findChild('a'), ShouldBeNil)
			So(node.findChild('b'), ShouldNotBeNil)
		})

		Convey("When shrinking into a Node48", func() {
			children := make(map[byte]ref, 48)
			for i := 0; i < 48; i++ {
				b := byte(255 - i*5) // descending insertion order
				c := newTestLeaf(p, string([]byte{b}), i)
				children[b] = c
				node.addChild(b, c)
			}

			shrunk := node.shrink()

			So(shrunk.numChildren, ShouldEqual, 48)

			for b, c := range children {
				found := shrunk.findChild(b)
				So(found, ShouldNotBeNil)
				So(*found, ShouldEqual, c)
			}
		})

		Convey("When taking the minimum", func() {
			min := newTestLeaf(p, "b", 1)
			node.addChild('x', newTestLeaf(p, "x", 2))
			node.addChild('b', min)

			So(node.minimum(), ShouldEqual, min)
		})
	})
}
