// Package uitest provides testing utilities for the reader's Bubble Tea
// models.
//
// [NewTestModel] accepts any model satisfying [BubbleModel], including models
// whose Update method returns the concrete type instead of [tea.Model]:
//
//	func TestReader(t *testing.T) {
//	    t.Parallel()
//	    uitest.SetupColorProfile()
//
//	    tm := uitest.NewTestModel(t, model, uitest.Compact)
//	    tm.Send(tea.KeyMsg{Type: tea.KeyRight})
//	    output := uitest.GetFinalOutput(t, tm, time.Second)
//	}
//
// Mouse gestures are built with [Swipe] and [Tap] and replayed against a
// [Clock], so pointer velocities are exact:
//
//	clock := uitest.NewClock()
//	for _, s := range uitest.Swipe(0, 18, 3, 2, 5*time.Millisecond) {
//	    clock.Advance(s.After)
//	    m, _ = m.Update(s.Msg)
//	}
package uitest
