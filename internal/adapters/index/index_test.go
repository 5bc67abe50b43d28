package index_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/plaudit/internal/adapters/index"
	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func generalKey(website, item string) model.EntityKey {
	return model.EntityKey{Website: website, Item: item, Criteria: model.CriteriaTypeGeneral}
}

// seedEntity adds n submissions averaging avg to one entity.
func seedEntity(ctx context.Context, store repository.Store, key model.EntityKey, profile model.Profile, n, avg int, at time.Time) {
	for i := 0; i < n; i++ {
		account := model.Account(fmt.Sprintf("user-%s-%d", key.Item, i))
		store.Add(ctx, account, key, profile, model.Submission{Overall: avg}, at)
	}
}

func TestRebuildOrdering(t *testing.T) {
	Convey("Given a store with entities created at different times", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		base := time.UnixMilli(1_700_000_000_000)

		seedEntity(ctx, store, generalKey("site-a", "old"), model.Profile{DisplayName: "Old Town"}, 2, 80, base)
		seedEntity(ctx, store, generalKey("site-a", "mid"), model.Profile{DisplayName: "Mid Town"}, 2, 80, base.Add(time.Hour))
		seedEntity(ctx, store, generalKey("site-a", "new"), model.Profile{DisplayName: "New Town"}, 2, 80, base.Add(2*time.Hour))

		Convey("When the new index rebuilds", func() {
			newIdx := index.New(index.KindNew)
			count := newIdx.Rebuild(ctx, store)
			So(count, ShouldEqual, 3)

			Convey("Then entries come back newest first", func() {
				page := newIdx.FeaturedSample(ctx, index.Filter{
					Criteria: model.CriteriaTypeGeneral,
					Websites: []string{"site-a"},
				}, 10)
				So(page.EndOfData, ShouldBeTrue)
				items := []string{}
				for _, e := range page.Entries {
					items = append(items, e.Key.Item)
				}
				So(items, ShouldResemble, []string{"new", "mid", "old"})
			})
		})

		Convey("When sort values tie", func() {
			seedEntity(ctx, store, generalKey("site-b", "alpha"), model.Profile{DisplayName: "Alpha"}, 2, 80, base)
			seedEntity(ctx, store, generalKey("site-b", "beta"), model.Profile{DisplayName: "Beta"}, 2, 80, base)

			newIdx := index.New(index.KindNew)
			newIdx.Rebuild(ctx, store)

			Convey("Then ties break by website then item, ascending", func() {
				page := newIdx.FeaturedSample(ctx, index.Filter{
					Criteria: model.CriteriaTypeGeneral,
					Websites: []string{"site-a", "site-b"},
				}, 10)
				// "old", "alpha" and "beta" share a creation time.
				tail := page.Entries[len(page.Entries)-3:]
				So(tail[0].Key, ShouldResemble, generalKey("site-a", "old"))
				So(tail[1].Key, ShouldResemble, generalKey("site-b", "alpha"))
				So(tail[2].Key, ShouldResemble, generalKey("site-b", "beta"))
			})
		})
	})
}

func TestHotIndexExclusion(t *testing.T) {
	Convey("Given entities above and below the hot threshold", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		now := time.Now()

		seedEntity(ctx, store, generalKey("site-a", "liked"), model.Profile{DisplayName: "Liked"}, 5, 80, now)
		seedEntity(ctx, store, generalKey("site-a", "panned"), model.Profile{DisplayName: "Panned"}, 5, 40, now)

		hotIdx := index.New(index.KindHot)
		hotIdx.Rebuild(ctx, store)

		Convey("When sampling the hot index", func() {
			page := hotIdx.FeaturedSample(ctx, index.Filter{
				Criteria: model.CriteriaTypeGeneral,
				Websites: []string{"site-a"},
			}, 10)

			Convey("Then only the well-rated entity appears", func() {
				So(len(page.Entries), ShouldEqual, 1)
				So(page.Entries[0].Key.Item, ShouldEqual, "liked")
			})
		})
	})
}

func TestRebuildDropsRemovedEntities(t *testing.T) {
	Convey("Given an entity whose submissions are all removed", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		now := time.Now()
		key := generalKey("site-a", "gone")

		store.Add(ctx, "solo", key, model.Profile{DisplayName: "Gone"}, model.Submission{Overall: 90}, now)

		newIdx := index.New(index.KindNew)
		newIdx.Rebuild(ctx, store)

		_, err := store.Remove(ctx, "solo", key)
		So(err, ShouldBeNil)

		Convey("When the next cycle rebuilds", func() {
			newIdx.Rebuild(ctx, store)
			page := newIdx.FeaturedSample(ctx, index.Filter{
				Criteria: model.CriteriaTypeGeneral,
				Websites: []string{"site-a"},
			}, 10)

			Convey("Then the entity no longer appears for any filter", func() {
				So(page.Entries, ShouldBeEmpty)
				So(page.EndOfData, ShouldBeTrue)
			})
		})
	})
}

func TestTagFiltering(t *testing.T) {
	Convey("Given entities with derived and explicit tags", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		now := time.Now()

		seedEntity(ctx, store, generalKey("site-a", "bridge"),
			model.Profile{DisplayName: "Golden-Gate Bridge", Tags: []string{"Landmark"}}, 2, 80, now)
		seedEntity(ctx, store, generalKey("site-a", "tower"),
			model.Profile{DisplayName: "Coit Tower", Tags: []string{"landmark"}}, 2, 80, now.Add(time.Minute))
		seedEntity(ctx, store, generalKey("site-a", "cafe"),
			model.Profile{DisplayName: "Corner Cafe"}, 2, 80, now.Add(2*time.Minute))

		newIdx := index.New(index.KindNew)
		newIdx.Rebuild(ctx, store)

		Convey("When filtering by one tag", func() {
			page := newIdx.FeaturedSample(ctx, index.Filter{
				Criteria: model.CriteriaTypeGeneral,
				Websites: []string{"site-a"},
				Tags:     []string{"landmark"},
			}, 10)

			Convey("Then only tagged entities are returned, explicit tags normalized", func() {
				items := []string{}
				for _, e := range page.Entries {
					items = append(items, e.Key.Item)
				}
				So(items, ShouldResemble, []string{"tower", "bridge"})
			})
		})

		Convey("When filtering by multiple tags with AND semantics", func() {
			page := newIdx.FeaturedSample(ctx, index.Filter{
				Criteria: model.CriteriaTypeGeneral,
				Websites: []string{"site-a"},
				Tags:     []string{"landmark", "golden-gate"},
			}, 10)

			Convey("Then only entities carrying every tag survive", func() {
				So(len(page.Entries), ShouldEqual, 1)
				So(page.Entries[0].Key.Item, ShouldEqual, "bridge")
			})
		})

		Convey("When a required tag matches nothing", func() {
			page := newIdx.FeaturedSample(ctx, index.Filter{
				Criteria: model.CriteriaTypeGeneral,
				Websites: []string{"site-a"},
				Tags:     []string{"landmark", "nonexistent"},
			}, 10)

			Convey("Then the page is empty and marked done", func() {
				So(page.Entries, ShouldBeEmpty)
				So(page.EndOfData, ShouldBeTrue)
			})
		})
	})
}
