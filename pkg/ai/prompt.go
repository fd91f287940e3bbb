package ai

// Prompts exist in both languages, selected by the detected question
// language. All of them address the same indexed text layout: catalog
// records rendered as labeled field lines (Name / Code / Barcode / Type /
// Category / Description / attribute lines).

const PROMPT_REFORMULATE_EN = `You rewrite a user question about a catalog of products and materials into a short retrieval query.
The indexed text uses labeled field lines: Name, Code, Barcode, Type, Category, Description and attribute lines ("Attr: value").
Rules:
1. Keep every identifier (codes, barcodes, part numbers) exactly as written.
2. Bias the query toward those field labels and the record vocabulary, not conversational words.
3. Expand numeric values with units into common spelling variants, e.g. "33kV" also as "33 kV" and "33000V".
4. A question about whether something "was built" or "was made" asks whether a catalog record EXISTS: rewrite it as a record search over name/code/type/attributes, never as a manufacturing-history query.
5. Output a single compact keyword/spec string, no explanations.

Question: ${question}`

const PROMPT_REFORMULATE_CN = `你负责把用户关于产品/物料目录的提问改写为简短的检索词。
索引文本使用带标签的字段行：名称(Name)、编码(Code)、条码(Barcode)、类型(Type)、分类(Category)、描述(Description)以及属性行。
规则：
1. 所有编号、编码、条码必须原样保留。
2. 检索词尽量贴近字段标签和记录用语，去掉口语化词汇。
3. 带单位的数值需要扩展常见写法，例如 "33kV" 同时给出 "33 kV"、"33000V"。
4. 询问是否"生产过/做过"某物时，实际是在问目录中是否存在对应记录：改写为对名称/编码/类型/属性的记录检索，而不是生产历史查询。
5. 只输出一条紧凑的检索词字符串，不要解释。

原问题: ${question}`

const PROMPT_EVIDENCE_FILTER_EN = `You decide which retrieved catalog chunks are genuine evidence for a question.
First classify the question intent as one of: "detail", "lookup", "existence", "category".
Then apply the admission rules and return the minimal keep set (at most 8 chunk ids):
- Use-case/suitability questions: keep a chunk only if its Description is non-empty and shares a key concept with the question, OR an attribute line matches a key concept, OR its Category clearly matches the implied need. Reject chunks whose Description is empty AND attributes are empty/"none", unless the chunk is an exact name/code match.
- Specific identifier questions: keep only chunks with a direct Name/Code/Barcode line match (case-insensitive).
- Broad category questions: keep only chunks whose Name or Category contains the category term.
- List/constrained questions: keep only chunks containing the constraint keyword (or an evident formatting variant) in Name, Code, Barcode, Category, Description or an attribute line. Vector similarity alone never qualifies.
Never invent chunk ids: "keep" must only contain ids shown in the evidence below.

Question: ${question}

Retrieved chunks:
${evidence}`

const PROMPT_EVIDENCE_FILTER_CN = `你负责判断检索到的目录片段哪些是回答问题的真实依据。
先把问题意图归类为："detail"（细节）、"lookup"（查询展示）、"existence"（是否存在）、"category"（大类）。
然后按准入规则返回最小保留集合（最多 8 个 chunk id）：
- 用途/适用性问题：仅当描述(Description)非空且与问题关键概念有重叠，或属性行命中关键概念，或分类(Category)明显符合需求时保留；描述为空且属性为空/"无" 的片段一律剔除，除非名称/编码完全命中。
- 指定编号问题：仅保留名称/编码/条码行直接命中的片段（忽略大小写）。
- 大类问题：仅保留名称或分类包含该类目词的片段。
- 带约束条件的列举问题：仅保留在名称、编码、条码、分类、描述或属性行中出现约束关键词（或明显的书写变体）的片段；只有向量相似不算依据。
不要编造 chunk id："keep" 中只能出现下方证据中展示过的 id。

问题: ${question}

检索片段:
${evidence}`

const PROMPT_ANSWER_STRICT_EN = `You answer a question about a catalog of products and materials using ONLY the evidence chunks below.
Classify the question intent as one of: "detail", "lookup", "existence", "category".
Formatting rules by intent:
- "existence" and "category": the answer MUST begin with an explicit "Yes" or "No".
- "lookup" and "detail": the answer must NOT begin with yes/no; summarize the matching record(s).
Grounding rules:
- Every claim must come from the evidence text. If the evidence does not support an answer, say you could not find it, set grounded=false and list what is missing in missing_data.
- Set grounded=true only when the cited chunks directly support the answer.
- "citations" contains the chunk ids (from the [id] markers) you actually relied on; cite nothing you did not use.
- Be conservative: when in doubt, do not affirm.
Answer in ${lang}.

Question: ${question}

Evidence:
${evidence}`

const PROMPT_ANSWER_STRICT_CN = `你需要仅依据下方证据片段回答关于产品/物料目录的问题。
先把问题意图归类为："detail"、"lookup"、"existence"、"category"。
按意图排版：
- "existence" 与 "category"：回答必须以明确的"是"或"否"开头。
- "lookup" 与 "detail"：回答不能以是/否开头，直接概述命中的记录。
依据规则：
- 所有结论必须来自证据文本。证据不足时明确说明未找到，grounded 置为 false，并把缺失内容写入 missing_data。
- 仅当引用的片段能直接支撑回答时，grounded 才能为 true。
- "citations" 填写实际依据的 chunk id（即 [id] 标记），没有用到的不要引用。
- 拿不准时宁可不下肯定结论。
请使用${lang}回答。

问题: ${question}

证据:
${evidence}`

const PROMPT_ANSWER_PERMISSIVE_EN = `You answer a question about a catalog of products and materials from the evidence chunks below.
Classify the question intent as one of: "detail", "lookup", "existence", "category".
Formatting rules by intent:
- "existence" and "category": the answer MUST begin with an explicit "Yes" or "No".
- "lookup" and "detail": the answer must NOT begin with yes/no; summarize the matching record(s).
Grounding rules:
- Prefer giving the user a concrete answer: if a record's name, code or barcode clearly matches what the question asks about, treat that as sufficient support and affirm it.
- Still never invent records or values absent from the evidence; missing details go into missing_data.
- Set grounded=true when your answer is supported by the cited chunks.
- "citations" contains the chunk ids (from the [id] markers) you relied on.
Answer in ${lang}.

Question: ${question}

Evidence:
${evidence}`

const PROMPT_ANSWER_PERMISSIVE_CN = `你需要依据下方证据片段回答关于产品/物料目录的问题。
先把问题意图归类为："detail"、"lookup"、"existence"、"category"。
按意图排版：
- "existence" 与 "category"：回答必须以明确的"是"或"否"开头。
- "lookup" 与 "detail"：回答不能以是/否开头，直接概述命中的记录。
依据规则：
- 优先给出具体回答：当记录的名称、编码或条码与问题明显对应时，即可视为足够依据并予以确认。
- 但不能编造证据中不存在的记录或数值；缺失的细节写入 missing_data。
- 回答被引用片段支撑时 grounded 置为 true。
- "citations" 填写实际依据的 chunk id（即 [id] 标记）。
请使用${lang}回答。

问题: ${question}

证据:
${evidence}`

// AnswerPolicy tags the two differently tuned generation prompts.
type AnswerPolicy string

const (
	POLICY_STRICT     AnswerPolicy = "strict"
	POLICY_PERMISSIVE AnswerPolicy = "permissive"
)

func ReformulatePrompt(lang string) string {
	if lang == MODEL_BASE_LANGUAGE_CN {
		return PROMPT_REFORMULATE_CN
	}
	return PROMPT_REFORMULATE_EN
}

func EvidenceFilterPrompt(lang string) string {
	if lang == MODEL_BASE_LANGUAGE_CN {
		return PROMPT_EVIDENCE_FILTER_CN
	}
	return PROMPT_EVIDENCE_FILTER_EN
}

func AnswerPrompt(policy AnswerPolicy, lang string) string {
	if policy == POLICY_PERMISSIVE {
		if lang == MODEL_BASE_LANGUAGE_CN {
			return PROMPT_ANSWER_PERMISSIVE_CN
		}
		return PROMPT_ANSWER_PERMISSIVE_EN
	}
	if lang == MODEL_BASE_LANGUAGE_CN {
		return PROMPT_ANSWER_STRICT_CN
	}
	return PROMPT_ANSWER_STRICT_EN
}
