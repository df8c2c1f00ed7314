// Copyright 2026 The Cayley Authors. All rights reserved.
//
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

// Package core registers all well-known RDF vocabularies in the global
// namespace registry.
package core

import (
	"github.com/cayleygraph/quad/voc/rdf"

	"github.com/cayleygraph/surf/voc"
)

// Well-known namespace IRIs.
const (
	RDF     = rdf.NS
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	OWL     = "http://www.w3.org/2002/07/owl#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	FOAF    = "http://xmlns.com/foaf/0.1/"
	DC      = "http://purl.org/dc/elements/1.1/"
	DCTerms = "http://purl.org/dc/terms/"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
	Schema  = "http://schema.org/"
	Geo     = "http://www.w3.org/2003/01/geo/wgs84_pos#"
	SIOC    = "http://rdfs.org/sioc/ns#"
	DBPedia = "http://dbpedia.org/ontology/"
)

// Namespaces lists the vocabularies registered by this package.
var Namespaces = []voc.Namespace{
	{Prefix: "rdf", Full: RDF},
	{Prefix: "rdfs", Full: RDFS},
	{Prefix: "owl", Full: OWL},
	{Prefix: "xsd", Full: XSD},
	{Prefix: "foaf", Full: FOAF},
	{Prefix: "dc", Full: DC},
	{Prefix: "dcterms", Full: DCTerms},
	{Prefix: "skos", Full: SKOS},
	{Prefix: "schema", Full: Schema},
	{Prefix: "geo", Full: Geo},
	{Prefix: "sioc", Full: SIOC},
	{Prefix: "dbpedia", Full: DBPedia},
}

func init() {
	for _, ns := range Namespaces {
		voc.Register(ns.Prefix, ns.Full)
	}
}
