package transform

import (
	"errors"
	"testing"

	"github.com/brdata/qsaextract/internal/decode"
)

func partnerRecord(overrides map[string]*decode.Value) decode.Record {
	rec := decode.NewRecord(8)
	rec.Set("cnpj", decode.IntValue(12345678000195))
	rec.Set("identificador_de_socio", decode.IntValue(1))
	rec.Set("nome_socio", decode.TextValue("EMPRESA PARTICIPACOES LTDA"))
	rec.Set("cnpj_cpf_do_socio", decode.IntValue(98765432000188))
	rec.Set("campo_desconhecido", decode.TextValue(""))
	rec.Set("cpf_representante_legal", decode.TextValue("000***000191**"))
	rec.Set("nome_representante_legal", decode.TextValue("JOSE DA SILVA"))
	rec.Set("codigo_qualificacao_representante_legal", decode.IntValue(5))

	for name, v := range overrides {
		if v == nil {
			rec.Delete(name)
		} else {
			rec.Set(name, *v)
		}
	}
	return rec
}

func TestPartner_DropsUnknownField(t *testing.T) {
	out, err := Partner(partnerRecord(nil))
	if err != nil {
		t.Fatalf("Partner() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Partner() produced %d records, want exactly 1", len(out))
	}
	if _, ok := out[0].Get("campo_desconhecido"); ok {
		t.Error("output still has campo_desconhecido")
	}
}

func TestPartner_NonEmptyUnknownFieldAborts(t *testing.T) {
	rec := partnerRecord(map[string]*decode.Value{"campo_desconhecido": text("XYZ")})

	_, err := Partner(rec)
	var rerr *RuleError
	if !errors.As(err, &rerr) {
		t.Fatalf("Partner() error = %v, want *RuleError", err)
	}
	if rerr.Value != "XYZ" {
		t.Errorf("RuleError.Value = %q, want %q", rerr.Value, "XYZ")
	}
}

func TestPartner_InvalidRepresentativeCPFNullsAllThree(t *testing.T) {
	rec := partnerRecord(map[string]*decode.Value{
		"nome_representante_legal": text("CPF INVALIDO"),
	})

	out, err := Partner(rec)
	if err != nil {
		t.Fatalf("Partner() error = %v", err)
	}

	for _, name := range []string{
		"cpf_representante_legal",
		"nome_representante_legal",
		"codigo_qualificacao_representante_legal",
	} {
		v, ok := out[0].Get(name)
		if !ok {
			t.Fatalf("field %q missing from output", name)
		}
		if !v.IsNull() {
			t.Errorf("field %q = %+v, want null", name, v)
		}
	}
}

func TestPartner_MaskedTaxIDBlanked(t *testing.T) {
	rec := partnerRecord(map[string]*decode.Value{
		"cnpj_cpf_do_socio": text("000***000000**"),
	})

	out, err := Partner(rec)
	if err != nil {
		t.Fatalf("Partner() error = %v", err)
	}
	if got := str(out[0], "cnpj_cpf_do_socio"); got != "" {
		t.Errorf("cnpj_cpf_do_socio = %q, want blank", got)
	}
}

func TestPartner_NaturalPersonTaxIDTruncated(t *testing.T) {
	rec := partnerRecord(map[string]*decode.Value{
		"identificador_de_socio": text("2"),
		"cnpj_cpf_do_socio":      text("000***12345678901"),
	})

	out, err := Partner(rec)
	if err != nil {
		t.Fatalf("Partner() error = %v", err)
	}
	if got := str(out[0], "cnpj_cpf_do_socio"); got != "12345678901" {
		t.Errorf("cnpj_cpf_do_socio = %q, want the last 11 characters", got)
	}
}

func TestPartner_LegalEntityTaxIDKept(t *testing.T) {
	out, err := Partner(partnerRecord(nil))
	if err != nil {
		t.Fatalf("Partner() error = %v", err)
	}
	if got := str(out[0], "cnpj_cpf_do_socio"); got != "98765432000188" {
		t.Errorf("cnpj_cpf_do_socio = %q, want untouched 14-digit value", got)
	}
}
