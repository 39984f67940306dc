package placesearch

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/go-resty/resty/v2"

	"placechat/internal/models"
)

const (
	kakaoDefaultRadius = 2000
	kakaoMaxPageSize   = 15
)

var kakaoCategoryCodes = map[string]string{
	models.PlaceCategoryCafe:       "CE7",
	models.PlaceCategoryRestaurant: "FD6",
	// no dedicated bar group on Kakao
	models.PlaceCategoryBar: "CE7",
}

type kakaoDocument struct {
	ID              string `json:"id"`
	PlaceName       string `json:"place_name"`
	CategoryName    string `json:"category_name"`
	Phone           string `json:"phone"`
	AddressName     string `json:"address_name"`
	RoadAddressName string `json:"road_address_name"`
	X               string `json:"x"`
	Y               string `json:"y"`
	Distance        string `json:"distance"`
}

type kakaoResponse struct {
	Documents []kakaoDocument `json:"documents"`
	Meta      struct {
		TotalCount    int  `json:"total_count"`
		PageableCount int  `json:"pageable_count"`
		IsEnd         bool `json:"is_end"`
	} `json:"meta"`
}

// Kakao searches the Kakao Local API.
type Kakao struct {
	client *resty.Client
	apiKey string
}

// NewKakao builds a Kakao provider. An empty apiKey yields ErrNotConfigured on search.
func NewKakao(baseURL, apiKey string) *Kakao {
	client := resty.New().SetBaseURL(baseURL)
	if apiKey != "" {
		client.SetHeader("Authorization", "KakaoAK "+apiKey)
	}
	return &Kakao{client: client, apiKey: apiKey}
}

func (k *Kakao) Name() string { return "kakao" }

// Search picks category search for known categories (or queries that name one)
// and keyword search for everything else.
func (k *Kakao) Search(ctx context.Context, q Query) (Result, error) {
	if k.apiKey == "" {
		return Result{}, ErrNotConfigured
	}
	display := q.Display
	if display <= 0 || display > kakaoMaxPageSize {
		display = kakaoMaxPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	category := q.Category
	if category == "" {
		query := q.Query
		if query == "" {
			query = DefaultQuery
		}
		mapped, ok := keywordCategories[query]
		if !ok {
			return k.searchKeyword(ctx, query, q.Latitude, q.Longitude, kakaoDefaultRadius, display, page)
		}
		category = mapped
	}
	return k.searchCategory(ctx, category, q.Latitude, q.Longitude, kakaoDefaultRadius, display, page)
}

func (k *Kakao) searchCategory(ctx context.Context, category string, lat, lng float64, radius, display, page int) (Result, error) {
	code, ok := kakaoCategoryCodes[category]
	if !ok {
		return k.searchKeyword(ctx, categoryKeyword(models.PlaceCategoryOther), lat, lng, radius, display, page)
	}

	resp, err := k.call(ctx, "/local/search/category.json", map[string]string{
		"category_group_code": code,
		"x":                   formatCoord(lng),
		"y":                   formatCoord(lat),
		"radius":              strconv.Itoa(radius),
		"size":                strconv.Itoa(display),
		"page":                strconv.Itoa(page),
		"sort":                "distance",
	})
	if err != nil {
		return Result{}, err
	}

	// sparse cafe results on the first page: widen to a keyword search
	if category == models.PlaceCategoryCafe && page == 1 && len(resp.Documents) < display {
		log.Printf("kakao category search sparse: category=%s results=%d, falling back to keyword", category, len(resp.Documents))
		return k.searchKeyword(ctx, categoryKeyword(models.PlaceCategoryCafe), lat, lng, radius*2, display, page)
	}
	return resp.result(), nil
}

func (k *Kakao) searchKeyword(ctx context.Context, query string, lat, lng float64, radius, display, page int) (Result, error) {
	resp, err := k.call(ctx, "/local/search/keyword.json", map[string]string{
		"query":  query,
		"x":      formatCoord(lng),
		"y":      formatCoord(lat),
		"radius": strconv.Itoa(radius),
		"size":   strconv.Itoa(display),
		"page":   strconv.Itoa(page),
		"sort":   "distance",
	})
	if err != nil {
		return Result{}, err
	}
	return resp.result(), nil
}

func (k *Kakao) call(ctx context.Context, path string, params map[string]string) (kakaoResponse, error) {
	resp, err := k.client.R().SetContext(ctx).SetQueryParams(params).Get(path)
	if err != nil {
		return kakaoResponse{}, upstreamError(k.Name(), err)
	}
	if resp.IsError() {
		return kakaoResponse{}, upstreamStatus(k.Name(), resp.StatusCode(), resp.String())
	}
	var out kakaoResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return kakaoResponse{}, upstreamError(k.Name(), err)
	}
	return out, nil
}

func (r kakaoResponse) result() Result {
	places := make([]Place, 0, len(r.Documents))
	for _, doc := range r.Documents {
		places = append(places, doc.place())
	}
	return Result{Places: places, IsEnd: r.Meta.IsEnd, TotalCount: r.Meta.TotalCount}
}

func (d kakaoDocument) place() Place {
	lat, _ := strconv.ParseFloat(d.Y, 64)
	lng, _ := strconv.ParseFloat(d.X, 64)
	road := d.RoadAddressName
	if road == "" {
		road = d.AddressName
	}
	p := Place{
		ID:          d.ID,
		Name:        d.PlaceName,
		Address:     d.AddressName,
		RoadAddress: road,
		Category:    d.CategoryName,
		Telephone:   d.Phone,
		Latitude:    lat,
		Longitude:   lng,
	}
	// kakao reports meters
	if meters, err := strconv.ParseFloat(d.Distance, 64); err == nil {
		km := meters / 1000
		p.Distance = &km
	}
	return p
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
