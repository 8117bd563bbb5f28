package simulation

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/internal/platform/config"
)

// Config describes one cluster simulation. Every field can be set from the
// environment.
type Config struct {
	// Mu is the mean heliocentric galactic position (pc) and velocity (km/s).
	Mu []float64 `env:"CLUSTERSIM_MU" envDefault:"1000,0,0,0,0,0"`
	// Sigma holds the standard deviation of each component of Mu. It is
	// ignored when Cov is set.
	Sigma []float64 `env:"CLUSTERSIM_SIGMA" envDefault:"5,5,5,1,1,1"`
	// Cov is the full 6x6 covariance, row-major.
	Cov []float64 `env:"CLUSTERSIM_COV"`

	ClusterMass float64 `env:"CLUSTERSIM_CLUSTER_MASS" envDefault:"100"`
	LogAge      float64 `env:"CLUSTERSIM_LOG_AGE" envDefault:"8"`
	Z           float64 `env:"CLUSTERSIM_Z" envDefault:"0.0152"`
	Seed        uint64  `env:"CLUSTERSIM_SEED" envDefault:"42"`

	Stellib string `env:"CLUSTERSIM_STELLIB" envDefault:"blackbody"`

	// Dust adds the dust attenuation step. Without it flam_dust equals flam.
	Dust bool    `env:"CLUSTERSIM_DUST" envDefault:"true"`
	Law  string  `env:"CLUSTERSIM_EXTINCTION_LAW" envDefault:"fitzpatrick"`
	Av   float64 `env:"CLUSTERSIM_AV" envDefault:"0"`
	Rv   float64 `env:"CLUSTERSIM_RV" envDefault:"3.1"`

	Filters  []string `env:"CLUSTERSIM_FILTERS" envDefault:"GROUND_JOHNSON_B,GROUND_JOHNSON_V,SDSS_g,SDSS_r,2MASS_J"`
	Download bool     `env:"CLUSTERSIM_DOWNLOAD" envDefault:"false"`
	SVOURL   string   `env:"CLUSTERSIM_SVO_URL"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config

	err := config.ParseEnv(&cfg)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Covariance returns Cov, or the diagonal covariance built from Sigma.
func (c Config) Covariance() ([]float64, error) {
	if len(c.Cov) > 0 {
		return append([]float64(nil), c.Cov...), nil
	}

	if len(c.Sigma) != len(c.Mu) {
		return nil, errors.Wrapf(ErrInvalidConfig, "%d sigma values for %d mean values", len(c.Sigma), len(c.Mu))
	}

	n := len(c.Sigma)
	cov := make([]float64, n*n)

	for i, s := range c.Sigma {
		cov[i*n+i] = s * s
	}

	return cov, nil
}
