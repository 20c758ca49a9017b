package transform

import "github.com/brdata/qsaextract/internal/decode"

// invalidCPFSentinel marks a legal representative whose CPF was rejected
// upstream; name, CPF and qualification are mutually invalid in that case.
const invalidCPFSentinel = "CPF INVALIDO"

// maskedPartnerTaxID is the placeholder the source uses for a fully redacted
// partner tax ID.
const maskedPartnerTaxID = "000***000000**"

// naturalPersonTaxIDLen is the length of a CPF, the stable tail of the
// padded partner tax-ID field for natural persons.
const naturalPersonTaxIDLen = 11

// Partner applies the partner (socio) business rules and always emits
// exactly one output record.
func Partner(rec decode.Record) ([]decode.Record, error) {
	// This field has been empty in every dump seen so far; a value here
	// means the layout shifted and everything after it is suspect.
	if v, ok := rec.Get("campo_desconhecido"); ok {
		if v.String() != "" {
			return nil, &RuleError{Field: "campo_desconhecido", Value: v.String(), CNPJ: str(rec, "cnpj")}
		}
		rec.Delete("campo_desconhecido")
	}

	if str(rec, "nome_representante_legal") == invalidCPFSentinel {
		rec.Set("cpf_representante_legal", decode.Null())
		rec.Set("nome_representante_legal", decode.Null())
		rec.Set("codigo_qualificacao_representante_legal", decode.Null())
	}

	if str(rec, "cnpj_cpf_do_socio") == maskedPartnerTaxID {
		rec.Set("cnpj_cpf_do_socio", decode.TextValue(""))
	}

	// Partner type 2 is a natural person: only the CPF tail of the padded
	// tax-ID field is meaningful.
	if str(rec, "identificador_de_socio") == "2" {
		id := str(rec, "cnpj_cpf_do_socio")
		if len(id) > naturalPersonTaxIDLen {
			id = id[len(id)-naturalPersonTaxIDLen:]
		}
		rec.Set("cnpj_cpf_do_socio", decode.TextValue(id))
	}

	return []decode.Record{rec}, nil
}
