package entity

type RiskDistribution struct {
	High   float64 `json:"Riesgo Alto (71-100%)"`
	Medium float64 `json:"Riesgo Medio (26-70%)"`
	Low    float64 `json:"Riesgo Bajo (0-25%)"`
}

type Kpis struct {
	RiskDistribution   RiskDistribution `json:"kpi_distribucion_riesgo"`
	ProcessedDocuments int64            `json:"kpi_documentos_procesados"`
	AveragePlagiarism  float64          `json:"kpi_plagio_promedio"`
	AverageTimeSeconds float64          `json:"kpi_tiempo_promedio_seg"`
	TotalPagesAnalyzed int64            `json:"kpi_total_paginas_analizadas"`
	TotalWordsAnalyzed int64            `json:"kpi_total_palabras_analizadas"`
}

type ProjectBI struct {
	Documents []Document `json:"documentos"`
	Kpis      Kpis       `json:"kpis"`
}

type HistoryItem struct {
	Date              string  `json:"fecha"`
	AveragePlagiarism float64 `json:"promedio_plagio"`
	TotalDocuments    int64   `json:"total_documentos"`
}

type RiskTrend struct {
	High   float64 `json:"Alto"`
	Medium float64 `json:"Medio"`
	Low    float64 `json:"Bajo"`
}
