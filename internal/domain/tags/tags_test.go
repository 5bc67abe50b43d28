package tags_test

import (
	"strings"
	"testing"

	"github.com/okian/plaudit/internal/domain/tags"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtract(t *testing.T) {
	Convey("Given a default extractor", t, func() {
		e := tags.New()

		Convey("When extracting from punctuated display text", func() {
			got := e.Extract("Golden-Gate!! at_Dusk")

			Convey("Then single connectors survive and delimiters end tokens", func() {
				So(got, ShouldResemble, []string{"golden-gate", "at_dusk"})
			})
		})

		Convey("When a token contains doubled connectors", func() {
			got := e.Extract("foo--bar baz")

			Convey("Then the whole token is dropped", func() {
				So(got, ShouldResemble, []string{"baz"})
			})
		})

		Convey("When text contains stopwords", func() {
			got := e.Extract("the bridge at dawn")

			Convey("Then stopwords are excluded", func() {
				So(got, ShouldResemble, []string{"bridge", "dawn"})
			})
		})

		Convey("When a trailing connector dangles", func() {
			got := e.Extract("sunset- view")

			Convey("Then it is stripped before acceptance", func() {
				So(got, ShouldResemble, []string{"sunset", "view"})
			})
		})

		Convey("When tokens repeat", func() {
			got := e.Extract("park park PARK")

			Convey("Then the result is de-duplicated case-insensitively", func() {
				So(got, ShouldResemble, []string{"park"})
			})
		})

		Convey("When a junk run has no alphanumeric start", func() {
			got := e.Extract("@@@nope fine")

			Convey("Then the run is skipped to the next whitespace", func() {
				So(got, ShouldResemble, []string{"fine"})
			})
		})

		Convey("When tokens contain multibyte runes", func() {
			got := e.Extract("é café " + strings.Repeat("é", 33))

			Convey("Then the length bounds count runes, not bytes", func() {
				So(got, ShouldResemble, []string{"café"})
			})
		})

		Convey("When tokens fall outside the length bounds", func() {
			long := strings.Repeat("x", 40)
			got := e.Extract("a " + long + " ok")

			Convey("Then short and oversized tokens are rejected", func() {
				So(got, ShouldResemble, []string{"ok"})
			})
		})
	})
}

func TestExtractorOptions(t *testing.T) {
	Convey("Given extractor options", t, func() {
		Convey("When capping the tag count", func() {
			e := tags.New(tags.WithMaxTags(2))
			got := e.Extract("alpha beta gamma delta")

			Convey("Then extraction stops at the cap", func() {
				So(got, ShouldResemble, []string{"alpha", "beta"})
			})
		})

		Convey("When replacing the stopword list", func() {
			e := tags.New(tags.WithStopwords([]string{"beta"}))
			got := e.Extract("the beta release")

			Convey("Then only the custom list applies", func() {
				So(got, ShouldResemble, []string{"the", "release"})
			})
		})

		Convey("When tightening the length bounds", func() {
			e := tags.New(tags.WithLengthBounds(5, 10))
			got := e.Extract("tiny elaborate")

			Convey("Then tokens outside the bounds are dropped", func() {
				So(got, ShouldResemble, []string{"elaborate"})
			})
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given explicit profile tags", t, func() {
		Convey("Then normalization lowercases and trims", func() {
			So(tags.Normalize("  Bridge "), ShouldEqual, "bridge")
			So(tags.Normalize("LANDMARK"), ShouldEqual, "landmark")
		})
	})
}
