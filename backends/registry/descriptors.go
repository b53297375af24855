// Copyright 2025 LexGate
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"fmt"

	"lexgate/backends/base"
)

// Descriptor describes one registered legal backend: its identity, the
// search parameters its upstream accepts, and (for Bedesten sources)
// the court type it maps to.
type Descriptor struct {
	Name        string        `json:"name"`         // logical backend name (emsal, bedesten_yargitay, ...)
	DisplayName string        `json:"display_name"` // human-readable, used in degraded-result messages
	Category    base.Category `json:"category"`
	CourtType   string        `json:"court_type,omitempty"` // Bedesten court type key, empty otherwise
	Params      []string      `json:"params"`               // allowed search parameter fields
	Required    []string      `json:"required,omitempty"`   // parameters that must be present
}

// ValidateParams checks a caller-supplied parameter map against the
// descriptor schema. Unknown fields are rejected rather than silently
// forwarded; missing required fields are rejected too.
func (d *Descriptor) ValidateParams(params map[string]interface{}) error {
	allowed := make(map[string]struct{}, len(d.Params))
	for _, p := range d.Params {
		allowed[p] = struct{}{}
	}
	for key := range params {
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("unknown parameter '%s' for backend '%s'", key, d.Name)
		}
	}
	for _, req := range d.Required {
		v, ok := params[req]
		if !ok || v == nil || v == "" {
			return fmt.Errorf("missing required parameter '%s' for backend '%s'", req, d.Name)
		}
	}
	return nil
}

// Bedesten unified search fans out to per-court descriptors. Court type
// keys follow the upstream API verbatim.
var bedestenCourtOrder = []string{
	"YARGITAYKARARI",
	"DANISTAYKARAR",
	"YERELHUKUK",
	"ISTINAFHUKUK",
	"KYB",
}

var bedestenCourtBackends = map[string]string{
	"YARGITAYKARARI": "bedesten_yargitay",
	"DANISTAYKARAR":  "bedesten_danistay",
	"YERELHUKUK":     "bedesten_yerel_hukuk",
	"ISTINAFHUKUK":   "bedesten_istinaf_hukuk",
	"KYB":            "bedesten_kyb",
}

var bedestenParams = []string{"phrase", "birimAdi", "kararTarihiStart", "kararTarihiEnd"}

// DefaultDescriptors returns the full descriptor table for the Turkish
// legal sources. Parameter schemas mirror each upstream's accepted
// search fields.
func DefaultDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			Name:        "bedesten_yargitay",
			DisplayName: "court of cassation",
			Category:    base.CategoryCourt,
			CourtType:   "YARGITAYKARARI",
			Params:      bedestenParams,
			Required:    []string{"phrase"},
		},
		{
			Name:        "bedesten_danistay",
			DisplayName: "council of state",
			Category:    base.CategoryCourt,
			CourtType:   "DANISTAYKARAR",
			Params:      bedestenParams,
			Required:    []string{"phrase"},
		},
		{
			Name:        "bedesten_yerel_hukuk",
			DisplayName: "local civil courts",
			Category:    base.CategoryCourt,
			CourtType:   "YERELHUKUK",
			Params:      bedestenParams,
			Required:    []string{"phrase"},
		},
		{
			Name:        "bedesten_istinaf_hukuk",
			DisplayName: "civil courts of appeals",
			Category:    base.CategoryCourt,
			CourtType:   "ISTINAFHUKUK",
			Params:      bedestenParams,
			Required:    []string{"phrase"},
		},
		{
			Name:        "bedesten_kyb",
			DisplayName: "extraordinary appeals",
			Category:    base.CategoryCourt,
			CourtType:   "KYB",
			Params:      bedestenParams,
			Required:    []string{"phrase"},
		},
		{
			Name:        "emsal",
			DisplayName: "precedent decisions",
			Category:    base.CategoryCourt,
			Params: []string{
				"keyword", "start_date", "end_date",
				"sort_criteria", "sort_direction",
			},
		},
		{
			Name:        "anayasa",
			DisplayName: "constitutional court",
			Category:    base.CategoryCourt,
			Params: []string{
				"decision_type", "keywords", "keywords_all", "keywords_any",
				"decision_start_date", "decision_end_date",
				"application_date_start", "application_date_end",
				"subject_category", "norm_type", "decision_type_norm",
			},
			// decision_type defaults upstream to the unified search
			// covering both norm control and individual applications
		},
		{
			Name:        "uyusmazlik",
			DisplayName: "jurisdictional disputes court",
			Category:    base.CategoryCourt,
			Params: []string{
				"bolum", "esas_yil", "esas_sayisi", "karar_yil", "karar_sayisi",
				"karar_date_begin", "karar_date_end", "icerik", "hepsi",
				"herhangi_birisi", "tumce", "wild_card", "not_hepsi",
				"uyusmazlik_turu", "karar_sonuclari", "kanun_no",
				"resmi_gazete_date", "resmi_gazete_sayi",
			},
		},
		{
			Name:        "kik",
			DisplayName: "public procurement authority",
			Category:    base.CategoryCourt,
			Params: []string{
				"karar_tipi", "karar_no", "yil",
				"karar_tarihi_baslangic", "karar_tarihi_bitis", "karar_metni",
				"basvuru_sahibi", "ihaleyi_yapan_idare", "basvuru_konusu_ihale",
				"resmi_gazete_tarihi", "resmi_gazete_sayisi",
			},
		},
		{
			Name:        "rekabet",
			DisplayName: "competition authority",
			Category:    base.CategoryCourt,
			Params: []string{
				"KararTuru", "KararSayisi", "KararTarihi",
				"YayinlanmaTarihi", "sayfaAdi", "PdfText",
			},
		},
		{
			Name:        "sayistay",
			DisplayName: "court of accounts",
			Category:    base.CategoryCourt,
			Params: []string{
				"decision_type", "karar_tarih_baslangic", "karar_tarih_bitis",
				"karar_no", "karar_ek", "karar_tamami", "web_karar_konusu",
				"web_karar_metni", "kamu_idaresi_turu", "dosya_no",
				"temyiz_karar", "temyiz_tutanak_no", "yili", "hesap_yili",
				"ilam_no", "ilam_dairesi", "yargilama_dairesi",
			},
			Required: []string{"decision_type"},
		},
		{
			Name:        "kvkk",
			DisplayName: "personal data protection authority",
			Category:    base.CategoryCourt,
			Params:      []string{"keywords"},
			Required:    []string{"keywords"},
		},
		{
			Name:        "bddk",
			DisplayName: "banking regulator",
			Category:    base.CategoryCourt,
			Params:      []string{"keywords"},
			Required:    []string{"keywords"},
		},
		{
			Name:        "mevzuat",
			DisplayName: "legislation database",
			Category:    base.CategoryLegislation,
			Params: []string{
				"mevzuat_adi", "mevzuat_no", "mevzuat_turleri", "phrase",
				"resmi_gazete_sayisi", "sort_field", "sort_direction",
			},
		},
	}
}

// defaultOperations maps logical operation names to the backends that
// serve them. The unified Bedesten search is the only multi-backend
// operation; its final backend list depends on the requested court
// types and is computed in Resolve.
var defaultOperations = map[string][]string{
	"bedesten_unified_search": {
		"bedesten_yargitay", "bedesten_danistay", "bedesten_yerel_hukuk",
		"bedesten_istinaf_hukuk", "bedesten_kyb",
	},
	"emsal_search":                {"emsal"},
	"constitutional_court_search": {"anayasa"},
	"uyusmazlik_search":           {"uyusmazlik"},
	"kik_search":                  {"kik"},
	"rekabet_search":              {"rekabet"},
	"sayistay_search":             {"sayistay"},
	"kvkk_search":                 {"kvkk"},
	"bddk_search":                 {"bddk"},
	"mevzuat_search":              {"mevzuat"},
}
