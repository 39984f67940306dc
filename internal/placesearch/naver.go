package placesearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"placechat/internal/geo"
)

const (
	naverMaxDisplay   = 5
	naverMaxDistanceK = 100.0
	// mapx/mapy are WGS84 degrees scaled by 1e7
	naverCoordScale = 1e7
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

type naverItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

type naverResponse struct {
	Total   int         `json:"total"`
	Start   int         `json:"start"`
	Display int         `json:"display"`
	Items   []naverItem `json:"items"`
}

// Naver searches the Naver Local Search API. The API has no location filter, so
// distances are computed locally and far results are dropped.
type Naver struct {
	client       *resty.Client
	clientID     string
	clientSecret string
}

// NewNaver builds a Naver provider.
func NewNaver(baseURL, clientID, clientSecret string) *Naver {
	client := resty.New().SetBaseURL(baseURL).SetHeaders(map[string]string{
		"X-Naver-Client-Id":     clientID,
		"X-Naver-Client-Secret": clientSecret,
	})
	return &Naver{client: client, clientID: clientID, clientSecret: clientSecret}
}

func (n *Naver) Name() string { return "naver" }

func (n *Naver) Search(ctx context.Context, q Query) (Result, error) {
	if n.clientID == "" || n.clientSecret == "" {
		return Result{}, ErrNotConfigured
	}
	display := q.Display
	if display <= 0 || display > naverMaxDisplay {
		display = naverMaxDisplay
	}
	query := q.Query
	if q.Category != "" {
		query = categoryKeyword(q.Category)
	}
	if query == "" {
		query = DefaultQuery
	}

	resp, err := n.client.R().SetContext(ctx).SetQueryParams(map[string]string{
		"query":   query,
		"display": strconv.Itoa(display),
		"sort":    "random",
	}).Get("/search/local.json")
	if err != nil {
		return Result{}, upstreamError(n.Name(), err)
	}
	if resp.IsError() {
		return Result{}, upstreamStatus(n.Name(), resp.StatusCode(), resp.String())
	}
	var out naverResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return Result{}, upstreamError(n.Name(), err)
	}

	origin := geo.Point{Lat: q.Latitude, Lng: q.Longitude}
	places := make([]Place, 0, len(out.Items))
	for _, item := range out.Items {
		p := item.place()
		pos := geo.Point{Lat: p.Latitude, Lng: p.Longitude}
		if !pos.Valid() {
			continue
		}
		d := geo.DistanceKm(origin, pos)
		if d >= naverMaxDistanceK {
			continue
		}
		p.Distance = &d
		places = append(places, p)
	}
	geo.SortByDistance(places, func(p Place) float64 { return *p.Distance })
	if len(places) > display {
		places = places[:display]
	}
	return Result{Places: places, IsEnd: true, TotalCount: len(places)}, nil
}

func (it naverItem) place() Place {
	x, _ := strconv.ParseFloat(it.MapX, 64)
	y, _ := strconv.ParseFloat(it.MapY, 64)

	return Place{
		ID:          "naver_" + it.externalID(),
		Name:        htmlTag.ReplaceAllString(it.Title, ""),
		Address:     it.Address,
		RoadAddress: it.RoadAddress,
		Category:    it.Category,
		Telephone:   it.Telephone,
		Description: htmlTag.ReplaceAllString(it.Description, ""),
		Latitude:    y / naverCoordScale,
		Longitude:   x / naverCoordScale,
	}
}

// externalID is the last segment of the item link. Items without a link get a
// digest of their name, address and coordinates so the id stays the same
// across searches.
func (it naverItem) externalID() string {
	if parts := strings.Split(strings.TrimRight(it.Link, "/"), "/"); parts[len(parts)-1] != "" {
		return parts[len(parts)-1]
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{it.Title, it.Address, it.RoadAddress, it.MapX, it.MapY}, "|")))
	return hex.EncodeToString(sum[:8])
}
