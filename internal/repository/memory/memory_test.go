package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/skillswap/internal/repository"
	"github.com/sakif/skillswap/internal/repository/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store { return New() })
}

func TestFailWith(t *testing.T) {
	s := New()
	boom := errors.New("disk on fire")
	s.FailWith = boom

	if _, _, err := s.Load(context.Background(), "k"); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want %v", err, boom)
	}
	if err := s.Save(context.Background(), "k", nil); !errors.Is(err, boom) {
		t.Errorf("Save() error = %v, want %v", err, boom)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Save(ctx, "k", []byte("abc"))

	blob, _, _ := s.Load(ctx, "k")
	blob[0] = 'z'

	again, _, _ := s.Load(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}
