package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/plaudit/internal/adapters/repository"
	"github.com/okian/plaudit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func entityKey(item string) model.EntityKey {
	return model.EntityKey{Website: "example.org", Item: item, Criteria: model.CriteriaTypeGeneral}
}

func overall(rating int) model.Submission {
	return model.Submission{Overall: rating}
}

func TestAddAndSummaries(t *testing.T) {
	Convey("Given a fresh feedback store", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		key := entityKey("item-1")
		profile := model.Profile{DisplayName: "Golden Gate", Tags: []string{"bridge"}}
		now := time.Now()

		Convey("When two accounts rate the same entity", func() {
			status, summary := store.Add(ctx, "userA", key, profile, overall(80), now)
			So(status, ShouldEqual, repository.AddAccepted)
			So(summary.Count, ShouldEqual, 1)

			status, summary = store.Add(ctx, "userB", key, profile, overall(60), now.Add(time.Second))
			So(status, ShouldEqual, repository.AddAccepted)

			Convey("Then the summary averages both ratings", func() {
				So(summary.Count, ShouldEqual, 2)
				So(summary.Average, ShouldEqual, 70)
			})

			Convey("And removals walk the summary back down", func() {
				summary, err := store.Remove(ctx, "userA", key)
				So(err, ShouldBeNil)
				So(summary.Count, ShouldEqual, 1)
				So(summary.Average, ShouldEqual, 60)

				summary, err = store.Remove(ctx, "userB", key)
				So(err, ShouldBeNil)
				So(summary.Count, ShouldEqual, 0)

				Convey("And the entity reads back as the empty summary", func() {
					got := store.BasicSummary(ctx, key, false)
					So(got.Count, ShouldEqual, 0)
					So(store.Count(ctx), ShouldEqual, 0)
				})
			})
		})

		Convey("When the same account submits twice", func() {
			_, _ = store.Add(ctx, "userA", key, profile, overall(80), now)
			status, summary := store.Add(ctx, "userA", key, profile, overall(40), now.Add(time.Minute))

			Convey("Then the second submission replaces the first", func() {
				So(status, ShouldEqual, repository.AddReplaced)
				So(summary.Count, ShouldEqual, 1)
			})
		})

		Convey("When the entity is unknown", func() {
			Convey("Then summaries are empty, not errors", func() {
				So(store.BasicSummary(ctx, entityKey("nope"), false).Count, ShouldEqual, 0)
				So(store.DetailedSummary(ctx, entityKey("nope"), false).Overall.Count, ShouldEqual, 0)
			})
		})

		Convey("When removing a submission that was never made", func() {
			_, err := store.Remove(ctx, "ghost", key)

			Convey("Then the contract violation is reported", func() {
				So(err, ShouldEqual, repository.ErrNoSubmission)
			})
		})
	})
}

func TestSuppression(t *testing.T) {
	Convey("Given a store with a visibility floor of 50", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore(repository.WithMinimumVisibleAverage(50))
		key := entityKey("item-low")
		profile := model.Profile{DisplayName: "Quiet Corner"}
		now := time.Now()

		_, _ = store.Add(ctx, "userA", key, profile, overall(20), now)

		Convey("When reading without the below-threshold flag", func() {
			summary := store.BasicSummary(ctx, key, false)

			Convey("Then the average is replaced by the sentinel", func() {
				So(summary.Count, ShouldEqual, 1)
				So(summary.Suppressed, ShouldBeTrue)
				So(summary.Average, ShouldEqual, repository.SuppressedAverage)
			})
		})

		Convey("When the caller asks to see below-threshold values", func() {
			summary := store.BasicSummary(ctx, key, true)

			Convey("Then the real average is published", func() {
				So(summary.Suppressed, ShouldBeFalse)
				So(summary.Average, ShouldEqual, 20)
			})
		})
	})
}

func TestDetailedSummary(t *testing.T) {
	Convey("Given submissions with per-criterion ratings", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		key := entityKey("item-detail")
		profile := model.Profile{DisplayName: "Harbor View"}
		now := time.Now()

		subA := model.Submission{
			Overall: 80,
			Ratings: map[model.Criterion]int{model.CriterionQuality: 5, model.CriterionValue: 1},
		}
		subB := model.Submission{
			Overall: 60,
			Ratings: map[model.Criterion]int{model.CriterionQuality: 4},
		}
		_, _ = store.Add(ctx, "userA", key, profile, subA, now)
		_, _ = store.Add(ctx, "userB", key, profile, subB, now)

		Convey("When reading the detailed summary", func() {
			detail := store.DetailedSummary(ctx, key, false)

			Convey("Then the overall percentages sum to exactly 100", func() {
				So(detail.Overall.Count, ShouldEqual, 2)
				total := 0
				for _, p := range detail.OverallPercentages {
					total += p
				}
				So(total, ShouldEqual, 100)
			})

			Convey("And only rated criteria appear", func() {
				names := make([]string, 0, len(detail.Criteria))
				for _, c := range detail.Criteria {
					names = append(names, c.Criterion)
				}
				So(names, ShouldResemble, []string{"quality", "value"})
			})

			Convey("And each criterion is suppressed against its own floor", func() {
				for _, c := range detail.Criteria {
					switch c.Criterion {
					case "quality":
						// Average 5 and 4 rounds to 5, above the floor.
						So(c.Suppressed, ShouldBeFalse)
						total := 0
						for _, p := range c.Percentages {
							total += p
						}
						So(total, ShouldEqual, 100)
					case "value":
						// Single rating of 1 sits below the floor of 3.
						So(c.Suppressed, ShouldBeTrue)
						So(c.Average, ShouldEqual, repository.SuppressedAverage)
						So(c.Percentages, ShouldBeNil)
					}
				}
			})
		})

		Convey("When the last rating for a criterion is removed", func() {
			_, err := store.Remove(ctx, "userA", key)
			So(err, ShouldBeNil)
			detail := store.DetailedSummary(ctx, key, false)

			Convey("Then that criterion disappears from the summary", func() {
				names := make([]string, 0, len(detail.Criteria))
				for _, c := range detail.Criteria {
					names = append(names, c.Criterion)
				}
				So(names, ShouldResemble, []string{"quality"})
			})
		})
	})
}

func TestSubmissionCap(t *testing.T) {
	Convey("Given a store capped at two submissions per account", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore(repository.WithMaxSubmissionsPerAccount(2))
		profile := model.Profile{DisplayName: "Capped"}
		now := time.Now()

		_, _ = store.Add(ctx, "userA", entityKey("one"), profile, overall(50), now)
		_, _ = store.Add(ctx, "userA", entityKey("two"), profile, overall(50), now)

		Convey("When the cap is reached", func() {
			status, summary := store.Add(ctx, "userA", entityKey("three"), profile, overall(50), now)

			Convey("Then the add is declined, not failed", func() {
				So(status, ShouldEqual, repository.AddRejectedTooMany)
				So(summary.Count, ShouldEqual, 0)
				So(store.Count(ctx), ShouldEqual, 2)
			})

			Convey("And replacing an existing submission is still allowed", func() {
				status, _ := store.Add(ctx, "userA", entityKey("one"), profile, overall(90), now)
				So(status, ShouldEqual, repository.AddReplaced)
			})

			Convey("And removing frees a slot", func() {
				_, err := store.Remove(ctx, "userA", entityKey("one"))
				So(err, ShouldBeNil)
				status, _ := store.Add(ctx, "userA", entityKey("three"), profile, overall(50), now)
				So(status, ShouldEqual, repository.AddAccepted)
			})
		})
	})
}

func TestRestore(t *testing.T) {
	Convey("Given checkpoint records replayed in arbitrary order", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		key := entityKey("restored")
		profile := model.Profile{DisplayName: "Restored"}
		early := time.Unix(1000, 0)
		late := time.Unix(2000, 0)

		So(store.Restore(ctx, "userB", key, profile, overall(60), late), ShouldBeNil)
		So(store.Restore(ctx, "userA", key, profile, overall(80), early), ShouldBeNil)

		Convey("Then the aggregate matches a live-built one", func() {
			summary := store.BasicSummary(ctx, key, false)
			So(summary.Count, ShouldEqual, 2)
			So(summary.Average, ShouldEqual, 70)
		})

		Convey("And the creation time reconciles to the earliest record", func() {
			var stats []repository.FeaturedStats
			store.ForEach(ctx, model.CriteriaTypeGeneral, func(fs repository.FeaturedStats) {
				stats = append(stats, fs)
			})
			So(len(stats), ShouldEqual, 1)
			So(stats[0].CreationMillis, ShouldEqual, early.UnixMilli())
		})
	})
}

func TestCanonicalProfile(t *testing.T) {
	Convey("Given submissions with drifting profile metadata", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		key := entityKey("drift")
		now := time.Now()

		common := model.Profile{DisplayName: "Pier 39", Tags: []string{"waterfront"}}
		variant := model.Profile{DisplayName: "Pier Thirty-Nine", Tags: []string{"waterfront"}}

		_, _ = store.Add(ctx, "u1", key, common, overall(80), now)
		_, _ = store.Add(ctx, "u2", key, common, overall(70), now)
		_, _ = store.Add(ctx, "u3", key, variant, overall(90), now)

		Convey("When the rebuild snapshots the entity", func() {
			var got repository.FeaturedStats
			store.ForEach(ctx, model.CriteriaTypeGeneral, func(fs repository.FeaturedStats) {
				got = fs
			})

			Convey("Then the most frequent variant wins", func() {
				So(got.Profile.DisplayName, ShouldEqual, "Pier 39")
				So(got.Count, ShouldEqual, 3)
				So(got.Average, ShouldEqual, 80)
			})
		})
	})
}

func TestConcurrentMutation(t *testing.T) {
	Convey("Given many goroutines hammering overlapping entities", t, func() {
		ctx := context.Background()
		store := repository.NewFeedbackStore()
		profile := model.Profile{DisplayName: "Contended"}
		now := time.Now()

		const workers = 16
		const rounds = 50

		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func(id int) {
				defer wg.Done()
				account := model.Account(string(rune('a' + id%4)))
				key := entityKey("shared")
				for i := 0; i < rounds; i++ {
					store.Add(ctx, account, key, profile, overall((i%11)*10), now)
					if i%3 == 0 {
						// Interleaved removes may legitimately miss.
						store.Remove(ctx, account, key)
					}
				}
			}(w)
		}
		wg.Wait()

		Convey("Then the store is internally consistent", func() {
			summary := store.BasicSummary(ctx, entityKey("shared"), true)
			So(summary.Count, ShouldBeBetweenOrEqual, 0, 4)
			if summary.Count > 0 {
				detail := store.DetailedSummary(ctx, entityKey("shared"), true)
				total := 0
				for _, p := range detail.OverallPercentages {
					total += p
				}
				So(total, ShouldEqual, 100)
			}
		})
	})
}
