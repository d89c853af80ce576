package jsonrpc

import "github.com/brbranch/ncbi_mcp/internal/model"

// helpText は ncbi.help / ncbi_help が返す使い方ガイド
const helpText = `NCBI Sequence Fetcher - Available Tools:

1. ncbi_get_nucleotide_sequence(accession, rettype="fasta")
   Fetch nucleotide sequence from NCBI in FASTA format
   Example accessions: NM_000546, NG_005905, NC_000023

2. ncbi_get_protein_sequence(accession, rettype="fasta")
   Fetch protein sequence from NCBI in FASTA format
   Example accessions: NP_000537, P53_HUMAN

3. ncbi_get_sequence_metadata(accession, db="nucleotide")
   Get detailed metadata about a sequence in GenBank/GenPept format
   Databases: "nucleotide" or "protein"

4. ncbi_search(query, db="nucleotide", max_results=10)
   Search NCBI databases and get a list of matching entries
   Example queries: "BRCA1", "p53 tumor suppressor", "coronavirus spike"
   Databases: "nucleotide", "protein", "gene"

5. ncbi_list_recent(limit=20)
   List recent fetch history, newest first

6. ncbi_get_config / ncbi_set_config
   Inspect or update E-utilities settings (api key, email, retmax) and cache TTL

7. ncbi_purge(clearHistory=false)
   Remove expired cache entries and optionally clear the fetch history

Example usage:
- "Fetch the protein sequence for P53_HUMAN"
- "Get the nucleotide sequence for accession NM_000546"
- "Search NCBI for BRCA1 gene sequences"
- "Get detailed metadata for the TP53 gene"
`

// toolNameToMethod はMCPツール名から内部メソッド名へのマッピング
var toolNameToMethod = map[string]string{
	"ncbi_get_nucleotide_sequence": "ncbi.get_nucleotide_sequence",
	"ncbi_get_protein_sequence":    "ncbi.get_protein_sequence",
	"ncbi_get_sequence_metadata":   "ncbi.get_sequence_metadata",
	"ncbi_search":                  "ncbi.search",
	"ncbi_list_recent":             "ncbi.list_recent",
	"ncbi_get_config":              "ncbi.get_config",
	"ncbi_set_config":              "ncbi.set_config",
	"ncbi_purge":                   "ncbi.purge",
	"ncbi_help":                    "ncbi.help",
}

// mcpTools は tools/list で公開するツール定義
var mcpTools = []model.Tool{
	{
		Name:        "ncbi_get_nucleotide_sequence",
		Description: "Fetch a nucleotide sequence from NCBI by accession number (FASTA by default)",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"accession": {
					Type:        "string",
					Description: "NCBI nucleotide accession number (e.g., NM_000546, NG_005905)",
				},
				"rettype": {
					Type:        "string",
					Description: "Return format",
					Enum:        []string{"fasta", "gb"},
					Default:     "fasta",
				},
			},
			Required: []string{"accession"},
		},
	},
	{
		Name:        "ncbi_get_protein_sequence",
		Description: "Fetch a protein sequence from NCBI by accession number (FASTA by default)",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"accession": {
					Type:        "string",
					Description: "NCBI protein accession number (e.g., NP_000537, P53_HUMAN)",
				},
				"rettype": {
					Type:        "string",
					Description: "Return format",
					Enum:        []string{"fasta", "gp"},
					Default:     "fasta",
				},
			},
			Required: []string{"accession"},
		},
	},
	{
		Name:        "ncbi_get_sequence_metadata",
		Description: "Fetch detailed metadata about a sequence in GenBank/GenPept format",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"accession": {
					Type:        "string",
					Description: "NCBI accession number",
				},
				"db": {
					Type:        "string",
					Description: "Database to query",
					Enum:        []string{"nucleotide", "protein"},
					Default:     "nucleotide",
				},
			},
			Required: []string{"accession"},
		},
	},
	{
		Name:        "ncbi_search",
		Description: "Search NCBI databases with a text query and list matching entries",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"query": {
					Type:        "string",
					Description: "Search term (e.g., \"BRCA1\", \"p53 tumor suppressor\")",
				},
				"db": {
					Type:        "string",
					Description: "Database to search",
					Enum:        []string{"nucleotide", "protein", "gene"},
					Default:     "nucleotide",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum number of results",
					Default:     10,
				},
			},
			Required: []string{"query"},
		},
	},
	{
		Name:        "ncbi_list_recent",
		Description: "List recent fetch history, newest first",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"limit": {
					Type:        "integer",
					Description: "Maximum number of history entries",
					Default:     20,
				},
			},
		},
	},
	{
		Name:        "ncbi_get_config",
		Description: "Get the current server configuration (the API key value is never returned)",
		InputSchema: model.JSONSchema{
			Type: "object",
		},
	},
	{
		Name:        "ncbi_set_config",
		Description: "Update E-utilities settings (api key, email, retmax) and cache TTL",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"eutils": {
					Type: "object",
					Properties: map[string]model.JSONSchema{
						"apiKey": {
							Type:        "string",
							Description: "NCBI API key (empty string clears it)",
						},
						"email": {
							Type:        "string",
							Description: "Contact email sent to NCBI (empty string clears it)",
						},
						"retmax": {
							Type:        "integer",
							Description: "Default maximum results for searches",
						},
					},
				},
				"cache": {
					Type: "object",
					Properties: map[string]model.JSONSchema{
						"ttlSeconds": {
							Type:        "integer",
							Description: "Cache entry lifetime in seconds",
						},
					},
				},
			},
		},
	},
	{
		Name:        "ncbi_purge",
		Description: "Remove expired cache entries and optionally clear the fetch history",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"clearHistory": {
					Type:        "boolean",
					Description: "Also delete all history entries",
					Default:     false,
				},
			},
		},
	},
	{
		Name:        "ncbi_help",
		Description: "Get help information about the NCBI Sequence Fetcher tools",
		InputSchema: model.JSONSchema{
			Type: "object",
		},
	},
}
