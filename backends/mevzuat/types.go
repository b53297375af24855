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

package mevzuat

// LegislationType describes one category accepted by the
// mevzuat_turleri search filter.
type LegislationType struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LegislationTypes lists the categories mevzuat.gov.tr recognizes, in
// the order the upstream documents them.
var LegislationTypes = []LegislationType{
	{Code: "KANUN", Name: "Kanun", Description: "Law enacted by Parliament"},
	{Code: "CB_KARARNAME", Name: "Cumhurbaşkanlığı Kararnamesi", Description: "Presidential decree"},
	{Code: "YONETMELIK", Name: "Yönetmelik", Description: "Administrative regulation"},
	{Code: "CB_YONETMELIK", Name: "Cumhurbaşkanlığı Yönetmeliği", Description: "Presidential regulation"},
	{Code: "CB_KARAR", Name: "Cumhurbaşkanlığı Kararı", Description: "Presidential decision"},
	{Code: "CB_GENELGE", Name: "Cumhurbaşkanlığı Genelgesi", Description: "Presidential circular"},
	{Code: "KHK", Name: "Kanun Hükmünde Kararname", Description: "Decree law (historical)"},
	{Code: "TUZUK", Name: "Tüzük", Description: "Statute or bylaw"},
	{Code: "KKY", Name: "Kurum ve Kuruluş Yönetmelikleri", Description: "Institutional regulations"},
	{Code: "UY", Name: "Usul ve Yönetmelikler", Description: "Procedures and regulations"},
	{Code: "TEBLIGLER", Name: "Tebliğler", Description: "Communiqués"},
	{Code: "MULGA", Name: "Mülga", Description: "Repealed legislation"},
}

// PopularLaw is one entry in the curated list of commonly referenced
// Turkish statutes.
type PopularLaw struct {
	Key         string `json:"key"`
	Number      string `json:"number"`
	Name        string `json:"name"`
	English     string `json:"english"`
	Year        string `json:"year"`
	Description string `json:"description"`
}

// PopularLaws is the curated table of foundational legislation. The
// Number field is usable directly as a search parameter.
var PopularLaws = []PopularLaw{
	{Key: "civil_law", Number: "4721", Name: "Türk Medeni Kanunu", English: "Turkish Civil Code", Year: "2001",
		Description: "Fundamental civil law governing personal rights, family, property"},
	{Key: "penal_code", Number: "5237", Name: "Türk Ceza Kanunu", English: "Turkish Penal Code", Year: "2004",
		Description: "Criminal law defining crimes and punishments"},
	{Key: "constitution", Number: "2709", Name: "Türkiye Cumhuriyeti Anayasası", English: "Constitution of the Republic of Turkey", Year: "1982",
		Description: "Supreme law of Turkey"},
	{Key: "commercial_code", Number: "6102", Name: "Türk Ticaret Kanunu", English: "Turkish Commercial Code", Year: "2011",
		Description: "Commercial and corporate law"},
	{Key: "labor_law", Number: "4857", Name: "İş Kanunu", English: "Labor Law", Year: "2003",
		Description: "Employment and labor relations"},
	{Key: "tax_procedure", Number: "213", Name: "Vergi Usul Kanunu", English: "Tax Procedure Law", Year: "1961",
		Description: "Tax administration and procedures"},
	{Key: "civil_procedure", Number: "6100", Name: "Hukuk Muhakemeleri Kanunu", English: "Code of Civil Procedure", Year: "2011",
		Description: "Civil court procedures and litigation"},
	{Key: "criminal_procedure", Number: "5271", Name: "Ceza Muhakemesi Kanunu", English: "Code of Criminal Procedure", Year: "2004",
		Description: "Criminal court procedures and investigation"},
}
