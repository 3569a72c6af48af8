package mcpserver

// PostFormat describes the Markdown post format that LLM consumers should
// keep when updating posts.
const PostFormat = `# Studio Post Format

Every post is a single Markdown file inside a project folder.

## Structure

` + "```" + `markdown
---
title: "Human-readable title"       # REQUIRED, shown in post lists
date: 2025-01-15                    # set when the post is created
---

## First recipe section

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Frontmatter comes first.** The opening ` + "`" + `---` + "`" + ` line must be the first line
   of the file and a second ` + "`" + `---` + "`" + ` line closes the block.
2. **` + "`" + `title` + "`" + ` is the display name.** Without it the post is listed as "Untitled Post".
   Change it with the ` + "`" + `retitle_post` + "`" + ` tool rather than editing the line by hand.
3. **The slug is fixed.** It is the file name without ` + "`" + `.md` + "`" + ` and does not
   follow later title changes.
4. **Recipe sections.** New posts start with one ` + "`" + `## heading` + "`" + ` per entry of the
   project's post recipe (see ` + "`" + `get_project` + "`" + `). Keep them unless asked otherwise.
5. **Whole-file updates.** ` + "`" + `update_post` + "`" + ` replaces the entire file, frontmatter
   included. Read the post first and send back the full content.
6. **Concurrent edits.** Pass the checksum returned by ` + "`" + `read_post` + "`" + ` to
   ` + "`" + `update_post` + "`" + `; a "conflict" error means the file changed meanwhile.
7. **Encoding** is UTF-8.

## Example

` + "```" + `markdown
---
title: "Launch retrospective"
date: 2025-01-20
---

## Hook

What surprised us in week one.

## Key points

- Signups doubled after the demo video.
` + "```" + `
`
