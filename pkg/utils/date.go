package utils

import "time"

// ParseOptionalDate converte um parâmetro de data opcional. String vazia
// resulta em nil sem erro; formato inválido resulta em erro para o chamador
// decidir ignorar o critério.
func ParseOptionalDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}
