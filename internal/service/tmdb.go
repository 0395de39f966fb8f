package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/deadpan/internal/config"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/utils"
	"golang.org/x/sync/singleflight"
)

// TMDBClient TMDB 元数据客户端：搜索结果缓存，详情请求合并
type TMDBClient struct {
	client       *utils.HTTPClient
	baseURL      string
	apiKey       string
	token        string
	imageBaseURL string
	searchCache  *utils.SearchCache[[]model.MetadataSearchResult]
	group        singleflight.Group
}

func NewTMDBClient(cfg config.TMDBConfig, client *utils.HTTPClient) *TMDBClient {
	return &TMDBClient{
		client:       client,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		token:        cfg.Token,
		imageBaseURL: cfg.ImageBaseURL,
		searchCache:  utils.NewSearchCache[[]model.MetadataSearchResult](cfg.CacheSize, cfg.CacheTTL),
	}
}

func (c *TMDBClient) ImageBaseURL() string {
	return c.imageBaseURL
}

// Search 按标题搜索电影，空标题直接返回空列表
func (c *TMDBClient) Search(ctx context.Context, title string) ([]model.MetadataSearchResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return []model.MetadataSearchResult{}, nil
	}
	if cached, ok := c.searchCache.Get(title); ok {
		return cached, nil
	}

	key := "search:" + utils.NormalizeKey(title)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		params := url.Values{}
		params.Set("query", title)

		// 合并后的请求由多个调用方共享，不随单个调用方取消，超时由 HTTP 客户端控制
		var resp tmdbSearchResponse
		if err := c.get(context.WithoutCancel(ctx), "/search/movie", params, &resp); err != nil {
			return nil, err
		}
		if resp.Results == nil {
			resp.Results = []model.MetadataSearchResult{}
		}
		c.searchCache.Set(title, resp.Results)
		return resp.Results, nil
	})
	if err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("[TMDB] 搜索失败")
		return nil, err
	}
	return val.([]model.MetadataSearchResult), nil
}

// Details 获取电影详情（含演职员与海报）。同一 id 的并发请求只发一次
func (c *TMDBClient) Details(ctx context.Context, id int) (*TMDBMovieDetails, error) {
	val, err, _ := c.group.Do("details:"+strconv.Itoa(id), func() (interface{}, error) {
		params := url.Values{}
		params.Set("append_to_response", "credits,images")

		var details TMDBMovieDetails
		if err := c.get(context.WithoutCancel(ctx), fmt.Sprintf("/movie/%d", id), params, &details); err != nil {
			return nil, err
		}
		return &details, nil
	})
	if err != nil {
		logging.Warn().Err(err).Int("tmdb_id", id).Msg("[TMDB] 获取详情失败")
		return nil, err
	}
	return val.(*TMDBMovieDetails), nil
}

func (c *TMDBClient) get(ctx context.Context, path string, params url.Values, target interface{}) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	} else if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	return c.client.GetJSON(ctx, c.baseURL+path+"?"+params.Encode(), header, target)
}
