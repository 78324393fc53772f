package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zerobin/client/internal/api"
)

type sentimentRequest struct {
	Text string `json:"text" binding:"required"`
}

type sentimentResult struct {
	Type     string  `json:"type"`
	Polarity float64 `json:"polarity"`
}

type providerSentimentResponse struct {
	Result sentimentResult `json:"result"`
}

// Sentiment proxies feedback text to the third-party sentiment provider.
// A missing API key is an explicit configuration error, not a silent
// passthrough. Results are cached when redis is available.
func (h HandlerSet) Sentiment(c *gin.Context) {
	if h.cfg.Sentiment.APIKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sentiment provider API key is not configured"})
		return
	}

	var req sentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cacheKey := "zerobin:sentiment:" + hashText(req.Text)
	if h.cache != nil {
		if cached, err := h.cache.Get(c.Request.Context(), cacheKey).Bytes(); err == nil {
			var result sentimentResult
			if json.Unmarshal(cached, &result) == nil {
				c.JSON(http.StatusOK, gin.H{"result": result, "cached": true})
				return
			}
		}
	}

	resp, err := api.Do[providerSentimentResponse](c.Request.Context(), h.backend, h.cfg.Sentiment.Endpoint, api.Options{
		Method: http.MethodPost,
		Body:   gin.H{"text": req.Text},
		Header: http.Header{"X-Api-Key": []string{h.cfg.Sentiment.APIKey}},
	})
	if err != nil {
		h.renderAPIError(c, err)
		return
	}

	if h.cache != nil {
		if encoded, err := json.Marshal(resp.Result); err == nil {
			if err := h.cache.Set(c.Request.Context(), cacheKey, encoded, h.cfg.Sentiment.CacheTTL).Err(); err != nil {
				h.log.Debug().Err(err).Msg("sentiment cache write failed")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"result": resp.Result, "cached": false})
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

type hotspot struct {
	Zone string  `json:"zone"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Risk float64 `json:"risk"`
}

// Hotspots is a locally fabricated heuristic, kept as a stub on purpose:
// there is no real prediction model behind it. Risk is a deterministic
// function of zone and date so the map does not jitter between requests.
func (h HandlerSet) Hotspots(c *gin.Context) {
	zones := []hotspot{
		{Zone: "Old Town Market", Lat: 23.8103, Lng: 90.4125},
		{Zone: "Riverside Ghat", Lat: 23.7956, Lng: 90.4074},
		{Zone: "Station Road", Lat: 23.8223, Lng: 90.3654},
		{Zone: "College Gate", Lat: 23.7508, Lng: 90.3939},
		{Zone: "Wholesale Bazaar", Lat: 23.7104, Lng: 90.4280},
	}

	day := time.Now().YearDay()
	for i := range zones {
		seed := sha256.Sum256([]byte(zones[i].Zone))
		zones[i].Risk = float64((int(seed[0])+day*7)%100) / 100
	}

	c.JSON(http.StatusOK, gin.H{"hotspots": zones, "stub": true})
}
