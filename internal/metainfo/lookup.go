// Package metainfo enriches titles with attributes from external movie/TV
// databases. Lookups are best-effort: a missing or failed lookup is "no
// metadata", never an error for the caller's pipeline.
package metainfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Advansoftware/m3utostrm/internal/utils"
)

const (
	omdbURL       = "http://www.omdbapi.com/"
	tmdbURL       = "https://api.themoviedb.org/3"
	lookupTimeout = 10 * time.Second
)

// Attributes is the merged bag of metadata found for a title.
type Attributes map[string]string

// Client queries OMDb and TMDb. Either key may be empty, which disables that
// backend.
type Client struct {
	OMDBKey string
	TMDBKey string
	http    *utils.HTTPClient
}

func NewClient(omdbKey, tmdbKey string) *Client {
	return &Client{
		OMDBKey: omdbKey,
		TMDBKey: tmdbKey,
		http:    utils.NewHTTPClient(utils.HTTPClientConfig{Timeout: lookupTimeout}),
	}
}

// Lookup queries every configured backend and merges the results. A nil map
// means nothing was found.
func (c *Client) Lookup(ctx context.Context, title string) Attributes {
	attrs := Attributes{}
	if c.OMDBKey != "" {
		if found := c.searchOMDB(ctx, title); found != nil {
			for k, v := range found {
				attrs[k] = v
			}
		}
	}
	if c.TMDBKey != "" {
		if found := c.searchTMDB(ctx, title); found != nil {
			for k, v := range found {
				attrs[k] = v
			}
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func (c *Client) searchOMDB(ctx context.Context, title string) Attributes {
	query := url.Values{}
	query.Set("apikey", c.OMDBKey)
	query.Set("t", title)
	query.Set("plot", "short")
	var result struct {
		Response string `json:"Response"`
		Title    string `json:"Title"`
		Year     string `json:"Year"`
		Poster   string `json:"Poster"`
		Plot     string `json:"Plot"`
		IMDBID   string `json:"imdbID"`
		Type     string `json:"Type"`
	}
	if err := c.getJSON(ctx, omdbURL+"?"+query.Encode(), &result); err != nil {
		log.Debug().Str("op", "metainfo/omdb").Msgf("Lookup failed for %q: %v", title, err)
		return nil
	}
	if result.Response != "True" {
		return nil
	}
	return Attributes{
		"omdb_title":  result.Title,
		"year":        result.Year,
		"omdb_poster": result.Poster,
		"plot":        result.Plot,
		"imdb_id":     result.IMDBID,
		"type":        result.Type,
	}
}

func (c *Client) searchTMDB(ctx context.Context, title string) Attributes {
	query := url.Values{}
	query.Set("api_key", c.TMDBKey)
	query.Set("query", title)
	var result struct {
		Results []struct {
			ID         int64  `json:"id"`
			Title      string `json:"title"`
			Name       string `json:"name"`
			PosterPath string `json:"poster_path"`
			Overview   string `json:"overview"`
			MediaType  string `json:"media_type"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, tmdbURL+"/search/multi?"+query.Encode(), &result); err != nil {
		log.Debug().Str("op", "metainfo/tmdb").Msgf("Lookup failed for %q: %v", title, err)
		return nil
	}
	if len(result.Results) == 0 {
		return nil
	}
	first := result.Results[0]
	tmdbTitle := first.Title
	if tmdbTitle == "" {
		tmdbTitle = first.Name
	}
	return Attributes{
		"tmdb_id":     fmt.Sprintf("%d", first.ID),
		"tmdb_title":  tmdbTitle,
		"tmdb_poster": "https://image.tmdb.org/t/p/w500" + first.PosterPath,
		"overview":    first.Overview,
		"media_type":  first.MediaType,
	}
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
