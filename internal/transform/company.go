package transform

import (
	"strings"

	"github.com/brdata/qsaextract/internal/decode"
)

// personalInfoFields are blanked whenever the company is an enrolled
// individual micro-entrepreneur (MEI): the company address is the person's
// home address.
var personalInfoFields = []string{
	"complemento",
	"ddd_fax",
	"ddd_telefone_1",
	"ddd_telefone_2",
	"descricao_tipo_logradouro",
	"logradouro",
	"numero",
}

// droppedCompanyFields are removed from every company record before output.
var droppedCompanyFields = []string{
	"codigo_pais",
	"correio_eletronico",
	"filler",
	"nome_pais",
}

// companyView is the typed view of the fields the company transform touches.
// Everything else in the record passes through untouched.
type companyView struct {
	cnpj      string
	legalName string
	tradeName string
	simples   string
	mei       string
}

// Company applies the company (empresa) business rules and always emits
// exactly one output record.
func Company(rec decode.Record) ([]decode.Record, error) {
	v := companyView{
		cnpj:      str(rec, "cnpj"),
		legalName: str(rec, "razao_social"),
		tradeName: str(rec, "nome_fantasia"),
		simples:   str(rec, "opcao_pelo_simples"),
		mei:       str(rec, "opcao_pelo_mei"),
	}

	if email, ok := ClearEmail(str(rec, "correio_eletronico")); ok {
		rec.Set("correio_eletronico", decode.TextValue(email))
	} else {
		rec.Set("correio_eletronico", decode.Null())
	}

	switch v.simples {
	case "", "0", "6", "8":
		rec.Set("opcao_pelo_simples", decode.TextValue("0"))
	case "5", "7":
		rec.Set("opcao_pelo_simples", decode.TextValue("1"))
	default:
		return nil, &RuleError{Field: "opcao_pelo_simples", Value: v.simples, CNPJ: v.cnpj}
	}

	// A trade name of all zeros is a placeholder, not a name.
	if v.tradeName != "" && strings.Trim(v.tradeName, "0") == "" {
		v.tradeName = ""
		rec.Set("nome_fantasia", decode.TextValue(""))
	}

	switch v.mei {
	case "", "N":
		rec.Set("opcao_pelo_mei", decode.TextValue("0"))
	case "S":
		rec.Set("opcao_pelo_mei", decode.TextValue("1"))

		// MEI names routinely carry the person's CPF; strip it.
		if words := strings.Fields(v.legalName); len(words) > 0 && isDigits(words[len(words)-1]) {
			rec.Set("razao_social", decode.TextValue(ClearCompanyName(v.legalName)))
		}
		if words := strings.Fields(v.tradeName); v.tradeName != "" && len(words) > 0 && isDigits(words[len(words)-1]) {
			rec.Set("nome_fantasia", decode.TextValue(ClearCompanyName(v.tradeName)))
		}

		for _, name := range personalInfoFields {
			rec.Set(name, decode.TextValue(""))
		}
	default:
		return nil, &RuleError{Field: "opcao_pelo_mei", Value: v.mei, CNPJ: v.cnpj}
	}

	for _, name := range droppedCompanyFields {
		rec.Delete(name)
	}

	return []decode.Record{rec}, nil
}
