package localgate

// program runs the backend gates in-process and prints one JSON array.
// argv: <project_root> <backend_dir> <file_path>.
const program = `
import sys, json
from pathlib import Path

root, backend, target = sys.argv[1], sys.argv[2], sys.argv[3]
sys.path.insert(0, root)
sys.path.insert(0, str(Path(root) / backend))

def encode(r):
    return {
        "gate_number": r.gate_number,
        "gate_name": r.gate_name,
        "status": r.status.value,
        "message": r.message,
        "details": list(r.details or []),
    }

results = []
try:
    from src.shared.config import load_config
    from src.layer2_rag.gate_basic import BasicGate
    from src.layer3_agents.review_agent import ReviewAgent
    from src.layer3_agents.arch_agent import ArchitectureAgent

    config = load_config(project_root=Path(root))
    file_path = Path(target)

    for r in BasicGate(config).run_all(file_path):
        results.append(encode(r))
    results.append(encode(ReviewAgent(config).run(file_path)))
    results.append(encode(ArchitectureAgent(config).run(file_path)))
except Exception as e:
    results.append({
        "gate_number": 0,
        "gate_name": "Error",
        "status": "skipped",
        "message": str(e),
        "details": [],
    })

sys.stdout.write(json.dumps(results, ensure_ascii=False) + "\n")
`
