package domain

import "time"

// Presets de período suportados pelo dashboard e pelas exportações.
const (
	PresetToday      = "today"
	PresetLast7Days  = "last_7_days"
	PresetLast30Days = "last_30_days"
	PresetThisMonth  = "this_month"
	PresetLastMonth  = "last_month"
	PresetThisYear   = "this_year"
)

// FilterCriteria é o conjunto de critérios opcionais recebidos da camada HTTP.
// Nada é persistido: o valor é construído a cada requisição.
type FilterCriteria struct {
	StartDate *time.Time // inclusivo
	EndDate   *time.Time // inclusivo
	Product   string
	Region    string
	Preset    string
	Compare   bool
}

// ResolvedFilter é o resultado concreto da resolução dos critérios:
// intervalo de datas [Start, End) e filtros de substring case-insensitive.
type ResolvedFilter struct {
	Start   *time.Time // inclusivo
	End     *time.Time // exclusivo
	Product string
	Region  string
}

// IsUnbounded indica que nenhum critério foi aplicado (subconjunto = base completa).
func (f ResolvedFilter) IsUnbounded() bool {
	return f.Start == nil && f.End == nil && f.Product == "" && f.Region == ""
}

// Resolve traduz os critérios em um filtro concreto relativo à data atual
// injetada (granularidade de dia de calendário). Retorna também o filtro do
// período de comparação quando solicitado e derivável.
//
// Regras:
//   - o preset restringe primeiro; datas explícitas restringem como
//     interseção adicional (AND), nunca como substituição;
//   - preset desconhecido é ignorado (critério inválido não causa falha);
//   - o período de comparação cobre apenas o intervalo de datas, imediatamente
//     anterior ao período primário; presets de calendário usam o mês/ano
//     anterior, os demais usam janela de comprimento idêntico.
func (c FilterCriteria) Resolve(today time.Time) (ResolvedFilter, *ResolvedFilter) {
	today = truncateToDay(today)

	var filter ResolvedFilter
	var comparison *ResolvedFilter

	start, end, compStart, compEnd, ok := c.presetWindow(today)
	if ok {
		filter.Start = &start
		filter.End = &end
		if c.Compare {
			comparison = &ResolvedFilter{Start: &compStart, End: &compEnd}
		}
	} else if c.Compare && c.StartDate != nil && c.EndDate != nil {
		// Sem preset a comparação só é derivável com os dois limites explícitos:
		// janela de mesmo comprimento imediatamente anterior.
		primaryStart := truncateToDay(*c.StartDate)
		primaryEnd := truncateToDay(*c.EndDate).AddDate(0, 0, 1)
		length := int(primaryEnd.Sub(primaryStart).Hours() / 24)
		cs := primaryStart.AddDate(0, 0, -length)
		comparison = &ResolvedFilter{Start: &cs, End: &primaryStart}
	}

	// Limites explícitos sempre valem como restrição adicional.
	if c.StartDate != nil {
		s := truncateToDay(*c.StartDate)
		if filter.Start == nil || s.After(*filter.Start) {
			filter.Start = &s
		}
	}
	if c.EndDate != nil {
		e := truncateToDay(*c.EndDate).AddDate(0, 0, 1)
		if filter.End == nil || e.Before(*filter.End) {
			filter.End = &e
		}
	}

	filter.Product = c.Product
	filter.Region = c.Region

	return filter, comparison
}

// presetWindow devolve os limites [start, end) do período primário e de
// comparação para o preset configurado. ok=false para preset vazio ou inválido.
func (c FilterCriteria) presetWindow(today time.Time) (start, end, compStart, compEnd time.Time, ok bool) {
	switch c.Preset {
	case PresetToday:
		start = today
		end = today.AddDate(0, 0, 1)
		compStart = today.AddDate(0, 0, -1)
		compEnd = today

	case PresetLast7Days:
		start = today.AddDate(0, 0, -7)
		end = today.AddDate(0, 0, 1)
		compStart = today.AddDate(0, 0, -14)
		compEnd = start

	case PresetLast30Days:
		start = today.AddDate(0, 0, -30)
		end = today.AddDate(0, 0, 1)
		compStart = today.AddDate(0, 0, -60)
		compEnd = start

	case PresetThisMonth:
		start = firstOfMonth(today)
		end = start.AddDate(0, 1, 0)
		compStart = start.AddDate(0, -1, 0)
		compEnd = start

	case PresetLastMonth:
		// O recuo de mês via time.Date normaliza dezembro -> janeiro do ano
		// anterior corretamente.
		end = firstOfMonth(today)
		start = end.AddDate(0, -1, 0)
		compStart = start.AddDate(0, -1, 0)
		compEnd = start

	case PresetThisYear:
		start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		end = start.AddDate(1, 0, 0)
		compStart = start.AddDate(-1, 0, 0)
		compEnd = start

	default:
		return start, end, compStart, compEnd, false
	}

	return start, end, compStart, compEnd, true
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
