package memory

import (
	"sync"

	"github.com/cstarr7/power-rankings/internal/models"
)

// Repository caches the latest completed forecast.
type Repository struct {
	forecast *models.Forecast
	mu       sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveForecast(forecast *models.Forecast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forecast = forecast
}

func (r *Repository) GetForecast() *models.Forecast {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forecast
}
