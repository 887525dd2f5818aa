// FilePath: internal/relay/thingspeak.go
package relay

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/smartbus-iot/sensor-hub/internal/config"
	nuts "github.com/vaudience/go-nuts"
)

// ThingSpeakClient writes readings to a ThingSpeak channel through its
// update endpoint. It holds no per-call state and is safe to share.
type ThingSpeakClient struct {
	client           *resty.Client
	apiKey           string
	temperatureField string
	humidityField    string
}

func NewThingSpeakClient(cfg config.ThingSpeakConfig) *ThingSpeakClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &ThingSpeakClient{
		client:           client,
		apiKey:           cfg.WriteAPIKey,
		temperatureField: cfg.TemperatureField,
		humidityField:    cfg.HumidityField,
	}
}

// Send performs a single update call. ThingSpeak answers with the new entry
// id, and "0" when it refuses the update (bad key, rate limit).
func (c *ThingSpeakClient) Send(ctx context.Context, temperature, humidity float64) (bool, error) {
	if c.apiKey == "" {
		return false, ErrNotConfigured
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":          c.apiKey,
			c.temperatureField: FormatValue(temperature),
			c.humidityField:    FormatValue(humidity),
		}).
		Get("/update")
	if err != nil {
		nuts.L.Warnf("[ThingSpeak] Update request failed: %v", err)
		return false, nil
	}

	if !resp.IsSuccess() {
		nuts.L.Warnf("[ThingSpeak] Update rejected with status %d", resp.StatusCode())
		return false, nil
	}

	body := strings.TrimSpace(resp.String())
	entryID, err := strconv.ParseInt(body, 10, 64)
	if err != nil || entryID == 0 {
		nuts.L.Warnf("[ThingSpeak] Update not acknowledged, response %q", body)
		return false, nil
	}

	nuts.L.Debugf("[ThingSpeak] Stored entry %d", entryID)
	return true, nil
}

// FormatValue renders a reading in its shortest exact decimal form
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
