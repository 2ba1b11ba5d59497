package memory

import (
	"testing"

	"fxpub/internal/data/currency/tests"
)

func TestCurrencyMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
