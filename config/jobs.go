package config

import (
	"fmt"
	"os"
	"strings"

	apperrors "sjsage522/machineryworker/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Jobs maps a site name to the ordered listing URLs to scrape on it
type Jobs map[string][]string

type jobsFile struct {
	Sites map[string][]string `yaml:"sites"`
}

// LoadJobs reads a YAML jobs file of the form:
//
//	sites:
//	  Agrofy:
//	    - https://www.agrofy.com.br/...
func LoadJobs(path string) (Jobs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file %s: %w", path, err)
	}
	return ParseJobs(raw)
}

// ParseJobs parses the YAML jobs document. Blank URLs are dropped, order is kept.
func ParseJobs(raw []byte) (Jobs, error) {
	var f jobsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}

	jobs := make(Jobs, len(f.Sites))
	for site, urls := range f.Sites {
		cleaned := make([]string, 0, len(urls))
		for _, u := range urls {
			if u = strings.TrimSpace(u); u != "" {
				cleaned = append(cleaned, u)
			}
		}
		jobs[site] = cleaned
	}
	return jobs, nil
}

// ParsePairs turns "Site=url" arguments into jobs, keeping argument order per site
func ParsePairs(args []string) (Jobs, error) {
	jobs := make(Jobs)
	for _, arg := range args {
		site, u, ok := strings.Cut(arg, "=")
		site, u = strings.TrimSpace(site), strings.TrimSpace(u)
		if !ok || site == "" || u == "" {
			return nil, apperrors.NewValidation(site, fmt.Sprintf("invalid job %q, expected Site=url", arg))
		}
		jobs[site] = append(jobs[site], u)
	}
	return jobs, nil
}

// Merge appends the URLs of other to j
func (j Jobs) Merge(other Jobs) Jobs {
	if j == nil {
		j = make(Jobs)
	}
	for site, urls := range other {
		j[site] = append(j[site], urls...)
	}
	return j
}

// DefaultJobs is the sample job set used when nothing else is supplied
func DefaultJobs() Jobs {
	return Jobs{
		"Agrofy": {
			"https://www.agrofy.com.br/trator-john-deere-7230j-oferta.html",
			"https://www.agrofy.com.br/trator-case-puma-215-193793.html",
		},
		"TratoresEColheitadeiras": {
			"https://www.tratoresecolheitadeiras.com.br/veiculo/uberlandia/mg/plataforma-colheitadeira/gts/flexer-xs-45/2023/45-pes/draper/triamaq-tratores/1028839",
			"https://www.tratoresecolheitadeiras.com.br/veiculo/uberlandia/mg/plataforma-colheitadeira/gts/produttiva-1250/2022/caracol/12-linhas/triamaq-tratores/994257",
		},
		"MercadoMaquinas": {
			"https://www.mercadomaquinas.com.br/anuncio/236624-retro-escavadeira-caterpillar-416e-2015-carlopolis-pr",
			"https://www.mercadomaquinas.com.br/anuncio/236623-mini-escavadeira-bobcat-e27z-2019-sete-lagoas-mg",
		},
	}
}
