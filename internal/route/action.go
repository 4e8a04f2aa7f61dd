package route

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDestination = errors.New("destination is empty")
	ErrDispatchFailed     = errors.New("no action could be dispatched")
	ErrUnknownProvider    = errors.New("unknown provider")
)

type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// ParsePlatform accepts ios and android; empty and "default" mean android.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", string(PlatformAndroid):
		return PlatformAndroid, nil
	case string(PlatformIOS):
		return PlatformIOS, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

type Kind string

const (
	KindMapsTransit Kind = "maps_transit"
	KindProvider    Kind = "provider"
)

type Provider string

const (
	ProviderUber Provider = "uber"
	ProviderOla  Provider = "ola"
)

func ParseProviders(csv string) ([]Provider, error) {
	var out []Provider
	for _, raw := range strings.Split(csv, ",") {
		p := Provider(strings.ToLower(strings.TrimSpace(raw)))
		if p == "" {
			continue
		}
		if p != ProviderUber && p != ProviderOla {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
		}
		out = append(out, p)
	}
	return out, nil
}

// Action is one way to get to a destination: a primary URI and a fallback
// to try when the primary cannot be opened.
type Action struct {
	Kind     Kind     `json:"kind"`
	Provider Provider `json:"provider,omitempty"`
	Label    string   `json:"label"`
	Primary  string   `json:"primary"`
	Fallback string   `json:"fallback"`
}
