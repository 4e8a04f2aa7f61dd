package route

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"areasense/internal/area"
)

// Router turns a destination into ordered navigation actions and dispatches them.
type Router struct {
	Providers  []Provider
	Dispatcher Dispatcher
}

func NewRouter(providers []Provider, d Dispatcher) *Router {
	return &Router{Providers: providers, Dispatcher: d}
}

// Plan is pure: the maps action comes first, then one action per provider
// in configured order.
func (r *Router) Plan(dest string, origin area.LatLng, platform Platform) ([]Action, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return nil, ErrInvalidDestination
	}
	if err := area.ValidateCoordinate(origin); err != nil {
		return nil, err
	}
	if platform == "" {
		platform = PlatformAndroid
	}

	actions := []Action{mapsAction(dest, origin, platform)}
	for _, p := range r.Providers {
		a, err := providerAction(p, dest)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func mapsAction(dest string, origin area.LatLng, platform Platform) Action {
	enc := encodeComponent(dest)
	ll := coord(origin.Lat) + "," + coord(origin.Lng)
	google := fmt.Sprintf("https://www.google.com/maps/dir/?api=1&origin=%s&destination=%s&travelmode=transit", ll, enc)

	a := Action{Kind: KindMapsTransit, Label: "Public transport"}
	if platform == PlatformIOS {
		a.Primary = fmt.Sprintf("http://maps.apple.com/?saddr=%s&daddr=%s&dirflg=r", ll, enc)
		a.Fallback = google
		return a
	}
	a.Primary = google
	a.Fallback = fmt.Sprintf("geo:%s?q=%s", ll, enc)
	return a
}

func providerAction(p Provider, dest string) (Action, error) {
	enc := encodeComponent(dest)
	switch p {
	case ProviderUber:
		q := "action=setPickup&pickup=my_location&dropoff[query]=" + enc
		return Action{
			Kind:     KindProvider,
			Provider: p,
			Label:    "Uber",
			Primary:  "uber://?" + q,
			Fallback: "https://m.uber.com/ul/?" + q,
		}, nil
	case ProviderOla:
		return Action{
			Kind:     KindProvider,
			Provider: p,
			Label:    "Ola",
			Primary:  "ola://app/launch",
			Fallback: "https://ola.onelink.me/3Z5i?pid=deeplink&af_dp=ola%3A%2F%2Fapp%2Flaunch",
		}, nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
}

// encodeComponent percent-encodes s as a URI component. Space becomes %20
// and the marks ! ' ( ) * stay literal, as browsers' encodeURIComponent does.
var componentMarks = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

func encodeComponent(s string) string {
	return componentMarks.Replace(url.QueryEscape(s))
}

func coord(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }
