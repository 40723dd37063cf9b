package repository

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/sakif/skillswap/internal/apperror"
)

// envelopeVersion is bumped if the envelope layout ever changes.
const envelopeVersion = 1

// envelope wraps every stored value with a BLAKE2b-256 checksum of the
// payload bytes. A truncated write or a hand-edited file then fails the
// checksum instead of decoding into silently wrong state.
type envelope struct {
	Version  int             `json:"v"`
	Checksum string          `json:"sum"`
	Data     json.RawMessage `json:"data"`
}

// Encode serializes v into a checksummed blob.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("repository: encoding value: %w", err)
	}
	sum := blake2b.Sum256(data)
	return json.Marshal(envelope{
		Version:  envelopeVersion,
		Checksum: hex.EncodeToString(sum[:]),
		Data:     data,
	})
}

// Decode verifies and deserializes a blob produced by Encode into dst.
// Any mismatch is reported as apperror.ErrCorruptState.
func Decode(key string, blob []byte, dst any) error {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return apperror.CorruptState(key, err)
	}
	if env.Version != envelopeVersion {
		return apperror.CorruptState(key, fmt.Errorf("unsupported envelope version %d", env.Version))
	}

	want, err := hex.DecodeString(env.Checksum)
	if err != nil {
		return apperror.CorruptState(key, err)
	}
	got := blake2b.Sum256(env.Data)
	if !bytes.Equal(got[:], want) {
		return apperror.CorruptState(key, errors.New("checksum mismatch"))
	}

	if err := json.Unmarshal(env.Data, dst); err != nil {
		return apperror.CorruptState(key, err)
	}
	return nil
}

// LoadJSON reads key from store and decodes it into dst.
//
// Returns ok=false with dst untouched when the key is absent. Storage errors
// come back as apperror.ErrPersistence, undecodable blobs as
// apperror.ErrCorruptState.
func LoadJSON(ctx context.Context, store Store, key string, dst any) (bool, error) {
	blob, ok, err := store.Load(ctx, key)
	if err != nil {
		return false, apperror.Persistence("load", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := Decode(key, blob, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SaveJSON encodes v and overwrites key in store.
func SaveJSON(ctx context.Context, store Store, key string, v any) error {
	blob, err := Encode(v)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, key, blob); err != nil {
		return apperror.Persistence("save", key, err)
	}
	return nil
}

// RemoveKey deletes key from store.
func RemoveKey(ctx context.Context, store Store, key string) error {
	if err := store.Remove(ctx, key); err != nil {
		return apperror.Persistence("remove", key, err)
	}
	return nil
}
